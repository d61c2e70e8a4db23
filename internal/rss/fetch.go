package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"autoshow/internal/retry"
	"autoshow/internal/services"
)

// FetchTimeout bounds a single network attempt.
const FetchTimeout = 10 * time.Second

// Fetcher loads feed documents from local files or HTTP.
type Fetcher struct {
	client *http.Client
	policy retry.Policy
}

// NewFetcher builds a Fetcher. Network fetches run under policy with a
// FetchTimeout per attempt.
func NewFetcher(client *http.Client, policy retry.Policy) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client, policy: policy.WithTimeout(FetchTimeout)}
}

// Fetch returns the raw feed document for source. Sources without an http or
// https scheme are read from disk.
func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", services.Wrap(services.ErrValidation, "rss", "fetch", "feed source required", nil)
	}
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "rss", "read feed file", source, err)
		}
		return string(data), nil
	}
	return retry.Do(ctx, f.policy, "rss fetch", func(ctx context.Context) (string, error) {
		return f.get(ctx, source)
	})
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("rss fetch new request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rss fetch do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rss fetch %s: status %d", url, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("rss fetch read body: %w", err)
	}
	return string(raw), nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
