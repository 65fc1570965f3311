package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatConfig contains configuration for an OpenAI-compatible chat completions server
// (Groq, OpenAI, vLLM).
type ChatConfig struct {
	BaseURL       string // e.g., "https://api.groq.com/openai"
	Model         string // multimodal model id
	APIKey        string
	RequireAPIKey bool // hosted providers refuse anonymous calls
	Timeout       time.Duration
}

// DefaultGroqConfig returns configuration for Groq's hosted vision models.
func DefaultGroqConfig() ChatConfig {
	return ChatConfig{
		BaseURL:       "https://api.groq.com/openai",
		Model:         "meta-llama/llama-4-scout-17b-16e-instruct",
		RequireAPIKey: true,
		Timeout:       30 * time.Second,
	}
}

// DefaultVLLMConfig returns configuration for a local vLLM server.
func DefaultVLLMConfig() ChatConfig {
	return ChatConfig{
		BaseURL: "http://localhost:8000",
		Model:   "Qwen/Qwen2.5-VL-7B-Instruct",
		Timeout: 30 * time.Second,
	}
}

// ChatClient is a client for an OpenAI-compatible chat completions API.
type ChatClient struct {
	config     ChatConfig
	httpClient *http.Client
}

// NewChatClient creates a new chat client. It fails when the backend needs a key
// and none was configured.
func NewChatClient(config ChatConfig) (*ChatClient, error) {
	if config.RequireAPIKey && config.APIKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, config.BaseURL)
	}
	return &ChatClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// OpenAI-compatible request/response structures
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage content is either a string or a list of content parts.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// CompareImages asks the model whether a and b show the same artwork.
// Every failure wraps ErrJudgeUnavailable.
func (c *ChatClient) CompareImages(ctx context.Context, a, b ImageInput) (*Verdict, error) {
	messages := []chatMessage{
		{Role: "system", Content: SimilarityPrompt},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: userInstruction},
			{Type: "image_url", ImageURL: &imageURL{URL: a.DataURL()}},
			{Type: "image_url", ImageURL: &imageURL{URL: b.DataURL()}},
		}},
	}

	content, model, err := c.callAPI(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}

	verdict, err := ParseVerdict(content)
	if err != nil {
		return nil, err
	}
	verdict.Model = model
	return verdict, nil
}

func (c *ChatClient) callAPI(ctx context.Context, messages []chatMessage) (string, string, error) {
	reqBody := chatRequest{
		Model:          c.config.Model,
		Messages:       messages,
		MaxTokens:      256,
		Temperature:    0.0,
		Stream:         false,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to call chat API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", "", fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", "", fmt.Errorf("no response choices")
	}

	return chatResp.Choices[0].Message.Content, chatResp.Model, nil
}

// Ping checks if the server is reachable and accepts the configured key.
func (c *ChatClient) Ping(ctx context.Context) error {
	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat API not reachable at %s: %w", c.config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	return nil
}
