package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"autoshow/internal/providers"
)

// Config captures the Anthropic request settings.
type Config struct {
	APIKey      string
	MaxTokens   int
	Temperature float64
}

type promptFunc func(system, user string, settings types.RequestSettings) (string, error)

// Client sends prompts to Claude through llmkit.
type Client struct {
	cfg    Config
	prompt promptFunc
}

// NewClient constructs a Claude client.
func NewClient(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	c := &Client{cfg: cfg}
	c.prompt = c.callAnthropic
	return c
}

func (c *Client) callAnthropic(system, user string, settings types.RequestSettings) (string, error) {
	response, err := anthropic.PromptWithSettings(system, user, "", c.cfg.APIKey, settings)
	if err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", errors.New("no content in response")
	}
	return response.Content[0].Text, nil
}

// Complete runs the prompt and transcript through the requested model. llmkit
// calls are not context-aware, so cancellation abandons the in-flight request
// rather than aborting it.
func (c *Client) Complete(ctx context.Context, prompt, transcript, model string) (providers.Completion, error) {
	var empty providers.Completion
	if c.cfg.APIKey == "" {
		return empty, errors.New("claude complete: api key required")
	}
	settings := types.RequestSettings{
		Model:       model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.prompt(prompt, transcript, settings)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return empty, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return empty, fmt.Errorf("claude complete: %w", res.err)
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return empty, errors.New("claude complete: empty content")
		}
		return providers.Completion{Text: text}, nil
	}
}
