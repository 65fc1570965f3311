package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrJudgeUnavailable covers network failures, timeouts and malformed replies.
	ErrJudgeUnavailable = errors.New("llm: similarity judge unavailable")
	// ErrMissingAPIKey is returned at construction when a hosted backend has no key.
	ErrMissingAPIKey = errors.New("llm: missing API key")
)

// SimilarityPrompt instructs the model to compare two images and answer in strict JSON.
const SimilarityPrompt = `You are a duplicate-content checker for a digital art marketplace.
You will receive two images. Decide whether they show the same artwork: the same
image re-encoded, resized, cropped slightly, recoloured, watermarked or otherwise
lightly edited counts as the same. Different artworks that merely share a style,
subject or palette are NOT the same.

Respond with a single JSON object and nothing else:
{"result": <true if the images are the same artwork, otherwise false>, "message": "<one short sentence explaining why>"}`

// userInstruction accompanies the two images in the user turn.
const userInstruction = "Compare the first image with the second image."

// ImageInput is one image sent to a multimodal model.
type ImageInput struct {
	Data     []byte
	MIMEType string // detected from Data when empty
}

// Verdict is the judge's structured answer.
type Verdict struct {
	Same    bool   `json:"result"`
	Message string `json:"message"`
	Model   string `json:"-"`
}

// Judge compares two images with a multimodal model.
type Judge interface {
	CompareImages(ctx context.Context, a, b ImageInput) (*Verdict, error)
}

func (in ImageInput) mimeType() string {
	if in.MIMEType != "" {
		return in.MIMEType
	}
	return http.DetectContentType(in.Data)
}

// DataURL renders the image as a base64 data: URI.
func (in ImageInput) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", in.mimeType(), in.Base64())
}

// Base64 returns the raw base64 payload.
func (in ImageInput) Base64() string {
	return base64.StdEncoding.EncodeToString(in.Data)
}

// verdictWire mirrors the JSON contract; pointers detect missing fields.
type verdictWire struct {
	Result  *bool   `json:"result"`
	Message *string `json:"message"`
}

// ParseVerdict decodes a model reply. Anything but an object carrying a boolean
// "result" and a string "message" is a contract violation.
func ParseVerdict(content string) (*Verdict, error) {
	raw := stripCodeFence(strings.TrimSpace(content))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrJudgeUnavailable)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	var w verdictWire
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrJudgeUnavailable, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after reply", ErrJudgeUnavailable)
	}
	if w.Result == nil || w.Message == nil {
		return nil, fmt.Errorf("%w: reply missing result or message", ErrJudgeUnavailable)
	}
	return &Verdict{Same: *w.Result, Message: *w.Message}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
