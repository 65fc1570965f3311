package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// PinningConfig configures an IPFS pinning service with a Pinata-style API.
type PinningConfig struct {
	APIURL     string // e.g. "https://api.pinata.cloud"
	GatewayURL string // e.g. "https://gateway.pinata.cloud"
	JWT        string
	Timeout    time.Duration
}

// PinningStore pins files to IPFS over HTTP and reads them back via a gateway.
type PinningStore struct {
	config     PinningConfig
	httpClient *http.Client
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// NewPinningStore creates a pinning store. A missing JWT is a configuration error.
func NewPinningStore(config PinningConfig) (*PinningStore, error) {
	if config.JWT == "" {
		return nil, fmt.Errorf("ipfs: missing pinning service JWT")
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &PinningStore{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (s *PinningStore) Name() string {
	return "ipfs"
}

// Upload pins data and returns its CID.
func (s *PinningStore) Upload(ctx context.Context, data []byte, meta Meta) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	name := meta.Name
	if name == "" {
		name = meta.SHA256
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("ipfs: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ipfs: build form: %w", err)
	}
	metadata, _ := json.Marshal(map[string]any{
		"name":      name,
		"keyvalues": map[string]string{"sha256": meta.SHA256},
	})
	if err := w.WriteField("pinataMetadata", string(metadata)); err != nil {
		return "", fmt.Errorf("ipfs: build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ipfs: build form: %w", err)
	}

	url := strings.TrimSuffix(s.config.APIURL, "/") + "/pinning/pinFileToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("ipfs: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.config.JWT)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipfs: pin: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ipfs: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ipfs: pin failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var pin pinResponse
	if err := json.Unmarshal(respBody, &pin); err != nil {
		return "", fmt.Errorf("ipfs: parse response: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", fmt.Errorf("ipfs: response without CID")
	}
	return pin.IpfsHash, nil
}

// Download fetches cid through the gateway.
func (s *PinningStore) Download(ctx context.Context, cid string) ([]byte, error) {
	url := strings.TrimSuffix(s.config.GatewayURL, "/") + "/ipfs/" + cid
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipfs: gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipfs: gateway returned status %d for %s", resp.StatusCode, cid)
	}
	return io.ReadAll(resp.Body)
}
