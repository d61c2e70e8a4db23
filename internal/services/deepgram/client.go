package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Config captures the Deepgram connection settings.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client uploads a WAV file to Deepgram's pre-recorded listen endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Deepgram client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Paragraphs *struct {
					Transcript string `json:"transcript"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrMsg string `json:"err_msg"`
}

// Transcribe sends wavPath to Deepgram and returns the first alternative's
// paragraph-formatted transcript.
func (c *Client) Transcribe(ctx context.Context, wavPath, model string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("deepgram: api key required")
	}
	file, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("deepgram: open audio: %w", err)
	}
	defer file.Close()

	query := url.Values{}
	query.Set("model", model)
	query.Set("smart_format", "true")
	query.Set("punctuate", "true")
	query.Set("paragraphs", "true")
	endpoint := c.cfg.BaseURL + "/listen?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("deepgram: new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram: request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepgram: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("deepgram: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed listenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}
	if parsed.ErrMsg != "" {
		return "", fmt.Errorf("deepgram: %s", parsed.ErrMsg)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", errors.New("deepgram: response contained no transcript")
	}
	alt := parsed.Results.Channels[0].Alternatives[0]
	if alt.Paragraphs != nil && strings.TrimSpace(alt.Paragraphs.Transcript) != "" {
		return strings.TrimSpace(alt.Paragraphs.Transcript), nil
	}
	return strings.TrimSpace(alt.Transcript), nil
}
