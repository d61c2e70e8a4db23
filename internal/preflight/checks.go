package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"autoshow/internal/config"
	"autoshow/internal/deps"
	"autoshow/internal/providers"
)

// ollamaTimeout bounds the reachability check against a local Ollama server.
const ollamaTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the binaries the pipeline spawns. uvx is only
// required when WhisperX is the default transcription backend.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YtDlp,
			Description: "Required for video metadata and audio download",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for audio conversion",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for transcription cost estimates",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "uvx",
			Command:     cfg.Tools.UVX,
			Description: "Required for WhisperX transcription",
			Optional:    cfg.Transcription.DefaultService != string(providers.WhisperX),
			VersionArgs: []string{"--version"},
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}

// CheckServiceKey reports whether a key-backed service has a credential.
// Services that need no key return a zero Result.
func CheckServiceKey(cfg *config.Config, service providers.Service) Result {
	provider, ok := providers.Lookup(string(service))
	if !ok || !provider.RequiresKey {
		return Result{}
	}
	name := provider.Name + " API key"
	if cfg.ProviderKeys().For(provider.Service) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("missing (set %s)", provider.KeyEnv)}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckProviderKeys reports credentials for every key-backed service.
func CheckProviderKeys(cfg *config.Config) []Result {
	var results []Result
	for _, kind := range []providers.Kind{providers.KindTranscription, providers.KindLLM} {
		for _, service := range providers.Services(kind) {
			if r := CheckServiceKey(cfg, service); r.Name != "" {
				results = append(results, r)
			}
		}
	}
	return results
}

// CheckOllama verifies that the OpenAI-compatible Ollama server answers a
// model listing. endpoint is the configured chat completions URL. A single
// attempt is made.
func CheckOllama(ctx context.Context, client *http.Client, endpoint string) Result {
	const name = "Ollama"
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if client == nil {
		client = &http.Client{}
	}
	checkCtx, cancel := context.WithTimeout(ctx, ollamaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/models", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (server unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (server unreachable)"
	}
	return fmt.Sprintf("unreachable (%v)", err)
}
