package assembly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultPollInterval = 3 * time.Second

// Config captures the AssemblyAI connection settings.
type Config struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
}

// Client uploads audio to AssemblyAI, requests a transcript, and polls until
// it completes.
type Client struct {
	cfg        Config
	httpClient *http.Client
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient constructs an AssemblyAI client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Client{cfg: cfg, httpClient: httpClient, wait: waitContext}
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe uploads wavPath and returns the completed transcript text.
func (c *Client) Transcribe(ctx context.Context, wavPath, model string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("assembly: api key required")
	}
	uploadURL, err := c.upload(ctx, wavPath)
	if err != nil {
		return "", err
	}

	request := map[string]any{"audio_url": uploadURL, "speech_model": model}
	var created transcriptResponse
	if err := c.doJSON(ctx, http.MethodPost, "/transcript", request, &created); err != nil {
		return "", fmt.Errorf("assembly: create transcript: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("assembly: create transcript: missing id")
	}

	for {
		var status transcriptResponse
		if err := c.doJSON(ctx, http.MethodGet, "/transcript/"+created.ID, nil, &status); err != nil {
			return "", fmt.Errorf("assembly: poll transcript: %w", err)
		}
		switch status.Status {
		case "completed":
			return strings.TrimSpace(status.Text), nil
		case "error":
			return "", fmt.Errorf("assembly: transcription failed: %s", status.Error)
		}
		if err := c.wait(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}
	}
}

func (c *Client) upload(ctx context.Context, wavPath string) (string, error) {
	file, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("assembly: open audio: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", file)
	if err != nil {
		return "", fmt.Errorf("assembly: upload request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var uploaded struct {
		UploadURL string `json:"upload_url"`
	}
	if err := c.execute(req, &uploaded); err != nil {
		return "", fmt.Errorf("assembly: upload: %w", err)
	}
	if uploaded.UploadURL == "" {
		return "", errors.New("assembly: upload: missing upload_url")
	}
	return uploaded.UploadURL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.execute(req, target)
}

func (c *Client) execute(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
