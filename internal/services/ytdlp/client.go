package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"autoshow/internal/fileutil"
	"autoshow/internal/retry"
)

// DefaultBinary is used when no yt-dlp path is configured.
const DefaultBinary = "yt-dlp"

// Executor abstracts command execution for testability. Each stdout line is
// passed to onStdout.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithRetryPolicy overrides the retry policy wrapping every invocation.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// Client wraps yt-dlp CLI interactions. Every call is retried as a whole.
type Client struct {
	binary string
	exec   Executor
	policy retry.Policy
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
		policy: retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Info is the subset of video metadata printed by Metadata.
type Info struct {
	WebpageURL string
	Channel    string
	ChannelURL string
	Title      string
	// UploadDate is formatted YYYY-MM-DD.
	UploadDate string
	Thumbnail  string
}

var metadataFields = []string{"webpage_url", "channel", "uploader_url", "title", "upload_date", "thumbnail"}

// Metadata prints the fixed field list for url, one value per line.
func (c *Client) Metadata(ctx context.Context, url string) (Info, error) {
	if strings.TrimSpace(url) == "" {
		return Info{}, errors.New("yt-dlp metadata: url required")
	}
	args := []string{"--no-warnings", "--restrict-filenames", "--skip-download"}
	for _, field := range metadataFields {
		args = append(args, "--print", "%("+field+")s")
	}
	args = append(args, url)

	lines, err := retry.Do(ctx, c.policy, "yt-dlp metadata", func(ctx context.Context) ([]string, error) {
		return c.collect(ctx, args)
	})
	if err != nil {
		return Info{}, err
	}
	return parseInfo(lines)
}

func parseInfo(lines []string) (Info, error) {
	if len(lines) < len(metadataFields) {
		return Info{}, fmt.Errorf("yt-dlp metadata: expected %d fields, got %d", len(metadataFields), len(lines))
	}
	values := make([]string, len(metadataFields))
	for i := range metadataFields {
		values[i] = cleanValue(lines[i])
	}
	return Info{
		WebpageURL: values[0],
		Channel:    values[1],
		ChannelURL: values[2],
		Title:      values[3],
		UploadDate: FormatUploadDate(values[4]),
		Thumbnail:  values[5],
	}, nil
}

// FormatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD. Other shapes are
// returned unchanged.
func FormatUploadDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != 8 {
		return raw
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return raw
		}
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
}

// cleanValue maps yt-dlp's "NA" placeholder to an empty string.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "NA" {
		return ""
	}
	return v
}

// DownloadWAV downloads url and extracts its audio to dest as 16 kHz mono
// 16-bit PCM WAV.
func (c *Client) DownloadWAV(ctx context.Context, url, dest string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("yt-dlp download: url required")
	}
	if filepath.Ext(dest) != ".wav" {
		return fmt.Errorf("yt-dlp download: destination %q must end in .wav", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("yt-dlp download: create destination: %w", err)
	}
	template := strings.TrimSuffix(dest, ".wav") + ".%(ext)s"
	args := []string{
		"--no-warnings",
		"--restrict-filenames",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1 -c:a pcm_s16le",
		"-o", template,
		url,
	}
	_, err := retry.Do(ctx, c.policy, "yt-dlp download", func(ctx context.Context) (struct{}, error) {
		// yt-dlp treats an existing destination as done, even a partial one.
		if err := fileutil.RemoveIfExists(dest); err != nil {
			return struct{}{}, fmt.Errorf("yt-dlp download: clear destination: %w", err)
		}
		if _, err := c.collect(ctx, args); err != nil {
			return struct{}{}, err
		}
		if _, err := os.Stat(dest); err != nil {
			return struct{}{}, fmt.Errorf("yt-dlp produced no output at %s: %w", dest, err)
		}
		return struct{}{}, nil
	})
	return err
}

// ListEntries returns the entry URLs of a playlist or channel without
// resolving each video.
func (c *Client) ListEntries(ctx context.Context, url string) ([]string, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("yt-dlp list: url required")
	}
	args := []string{"--no-warnings", "--flat-playlist", "--print", "url", url}
	lines, err := retry.Do(ctx, c.policy, "yt-dlp list", func(ctx context.Context) ([]string, error) {
		return c.collect(ctx, args)
	})
	if err != nil {
		return nil, err
	}
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		if v := cleanValue(line); v != "" {
			entries = append(entries, v)
		}
	}
	return entries, nil
}

func (c *Client) collect(ctx context.Context, args []string) ([]string, error) {
	var lines []string
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var wg sync.WaitGroup
	var scanErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onStdout != nil {
				onStdout(scanner.Text())
			}
		}
		scanErr = scanner.Err()
	}()
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
