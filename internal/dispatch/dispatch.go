package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autoshow/internal/config"
	"autoshow/internal/logging"
	"autoshow/internal/providers"
	"autoshow/internal/retry"
	"autoshow/internal/services"
	"autoshow/internal/services/assembly"
	"autoshow/internal/services/claude"
	"autoshow/internal/services/deepgram"
	"autoshow/internal/services/llm"
	"autoshow/internal/services/whisperx"
)

// Table maps a resolved provider to its backend. Every call goes through the
// retry executor with the configured per-attempt timeout.
type Table struct {
	cfg        *config.Config
	registry   *providers.Registry
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

// Option customizes a Table.
type Option func(*Table)

// WithHTTPClient overrides the HTTP client used by network backends.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Table) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the retry policy (tests inject a sleeper).
func WithRetryPolicy(policy retry.Policy) Option {
	return func(t *Table) {
		t.policy = policy
	}
}

// New constructs a dispatch table.
func New(cfg *config.Config, registry *providers.Registry, logger *slog.Logger, opts ...Option) *Table {
	t := &Table{
		cfg:        cfg,
		registry:   registry,
		httpClient: &http.Client{},
		policy:     retry.DefaultPolicy(),
		logger:     logging.NewComponentLogger(logger, "dispatch"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcriber returns the retried backend for a valid transcription resolution.
func (t *Table) Transcriber(res providers.Resolution) (providers.Transcriber, error) {
	if !res.Valid || res.Skip || res.Kind != providers.KindTranscription {
		return nil, services.Wrap(services.ErrProviderResolution, "dispatch", "transcriber", fmt.Sprintf("unusable resolution for %q", res.Service), res.Err())
	}
	var backend providers.Transcriber
	switch res.Service {
	case providers.WhisperX:
		backend = whisperx.NewService(whisperx.Config{
			UVXBinary:   t.cfg.Tools.UVX,
			CUDAEnabled: t.cfg.Transcription.WhisperXCUDAEnabled,
		})
	case providers.Deepgram:
		backend = deepgram.NewClient(deepgram.Config{
			APIKey:  t.registry.Key(providers.Deepgram),
			BaseURL: t.cfg.Transcription.DeepgramBaseURL,
		}, t.httpClient)
	case providers.Assembly:
		backend = assembly.NewClient(assembly.Config{
			APIKey:       t.registry.Key(providers.Assembly),
			BaseURL:      t.cfg.Transcription.AssemblyBaseURL,
			PollInterval: t.cfg.PollInterval(),
		}, t.httpClient)
	default:
		return nil, services.Wrap(services.ErrProviderResolution, "dispatch", "transcriber", fmt.Sprintf("no backend for %q", res.Service), nil)
	}
	return &retriedTranscriber{
		service: res.Service,
		backend: backend,
		policy:  t.policyFor(t.cfg.TranscriptionTimeout()),
	}, nil
}

// Completer returns the retried backend for a valid LLM resolution.
func (t *Table) Completer(res providers.Resolution) (providers.Completer, error) {
	if !res.Valid || res.Skip || res.Kind != providers.KindLLM {
		return nil, services.Wrap(services.ErrProviderResolution, "dispatch", "completer", fmt.Sprintf("unusable resolution for %q", res.Service), res.Err())
	}
	var backend providers.Completer
	switch res.Service {
	case providers.ChatGPT:
		backend = t.openAICompatible(t.cfg.LLM.OpenAIBaseURL, t.registry.Key(providers.ChatGPT), false)
	case providers.DeepSeek:
		backend = t.openAICompatible(t.cfg.LLM.DeepSeekBaseURL, t.registry.Key(providers.DeepSeek), false)
	case providers.Ollama:
		backend = t.openAICompatible(t.cfg.LLM.OllamaBaseURL, "", true)
	case providers.Claude:
		backend = claude.NewClient(claude.Config{
			APIKey:      t.registry.Key(providers.Claude),
			MaxTokens:   t.cfg.LLM.MaxTokens,
			Temperature: t.cfg.LLM.Temperature,
		})
	default:
		return nil, services.Wrap(services.ErrProviderResolution, "dispatch", "completer", fmt.Sprintf("no backend for %q", res.Service), nil)
	}
	return &retriedCompleter{
		service: res.Service,
		backend: backend,
		policy:  t.policyFor(t.cfg.LLMTimeout()),
	}, nil
}

func (t *Table) openAICompatible(baseURL, key string, keyOptional bool) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:      key,
		BaseURL:     baseURL,
		MaxTokens:   t.cfg.LLM.MaxTokens,
		Temperature: t.cfg.LLM.Temperature,
		KeyOptional: keyOptional,
	}, llm.WithHTTPClient(t.httpClient))
}

func (t *Table) policyFor(timeout time.Duration) retry.Policy {
	p := t.policy.WithTimeout(timeout)
	p.Logger = t.logger
	return p
}

type retriedTranscriber struct {
	service providers.Service
	backend providers.Transcriber
	policy  retry.Policy
}

func (r *retriedTranscriber) Transcribe(ctx context.Context, wavPath, model string) (string, error) {
	return retry.Do(ctx, r.policy, string(r.service)+" transcribe", func(ctx context.Context) (string, error) {
		return r.backend.Transcribe(ctx, wavPath, model)
	})
}

type retriedCompleter struct {
	service providers.Service
	backend providers.Completer
	policy  retry.Policy
}

func (r *retriedCompleter) Complete(ctx context.Context, prompt, transcript, model string) (providers.Completion, error) {
	return retry.Do(ctx, r.policy, string(r.service)+" complete", func(ctx context.Context) (providers.Completion, error) {
		return r.backend.Complete(ctx, prompt, transcript, model)
	})
}
