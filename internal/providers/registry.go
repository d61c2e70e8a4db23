package providers

import (
	"fmt"
	"strings"

	"autoshow/internal/services"
)

// Keys carries the API keys handed to the registry at construction.
type Keys struct {
	OpenAI    string
	Anthropic string
	DeepSeek  string
	Deepgram  string
	Assembly  string
}

// For returns the key configured for a service, or "" when none applies.
func (k Keys) For(service Service) string {
	switch service {
	case ChatGPT:
		return strings.TrimSpace(k.OpenAI)
	case Claude:
		return strings.TrimSpace(k.Anthropic)
	case DeepSeek:
		return strings.TrimSpace(k.DeepSeek)
	case Deepgram:
		return strings.TrimSpace(k.Deepgram)
	case Assembly:
		return strings.TrimSpace(k.Assembly)
	default:
		return ""
	}
}

// Selection is a user-chosen service plus the raw flag value. A bare flag
// arrives as the literal "true"; anything else names a model.
type Selection struct {
	Service string
	Option  string
}

// Empty reports whether no service was selected.
func (s Selection) Empty() bool {
	return strings.TrimSpace(s.Service) == ""
}

// Resolution is the outcome of validating a Selection against the catalog.
type Resolution struct {
	Service Service
	Kind    Kind
	ModelID string
	Model   Model
	Valid   bool
	// Skip is set when no service was requested.
	Skip   bool
	Reason string
}

// Err converts an invalid resolution into a ProviderResolutionError.
func (r Resolution) Err() error {
	if r.Valid {
		return nil
	}
	return services.Wrap(services.ErrProviderResolution, "registry", string(r.Kind), r.Reason, nil)
}

// Registry resolves selections against the read-only catalog. It is safe for
// concurrent use.
type Registry struct {
	keys Keys
}

// NewRegistry constructs a registry bound to the supplied keys.
func NewRegistry(keys Keys) *Registry {
	return &Registry{keys: keys}
}

// Resolve validates a selection for the given kind.
func (r *Registry) Resolve(kind Kind, sel Selection) Resolution {
	name := strings.ToLower(strings.TrimSpace(sel.Service))
	if name == "" {
		return Resolution{Kind: kind, Valid: true, Skip: true}
	}
	provider, ok := Lookup(name)
	if !ok || provider.Kind != kind {
		return Resolution{
			Kind:   kind,
			Reason: fmt.Sprintf("unknown %s service %q", kind, sel.Service),
		}
	}
	res := Resolution{Service: provider.Service, Kind: kind}
	if provider.RequiresKey && r.keys.For(provider.Service) == "" {
		res.Reason = fmt.Sprintf("%s requires an API key (%s)", provider.Service, provider.KeyEnv)
		return res
	}

	modelID := strings.TrimSpace(sel.Option)
	if modelID == "" || modelID == "true" {
		modelID = provider.DefaultModel().ID
	}
	model, ok := provider.FindModel(modelID)
	if !ok {
		res.Reason = fmt.Sprintf("model %q is not available for %s", modelID, provider.Service)
		return res
	}
	res.ModelID = model.ID
	res.Model = model
	res.Valid = true
	return res
}

// ValidateTranscriptionService resolves a transcription selection. Unlike the
// LLM step, transcription cannot be skipped.
func (r *Registry) ValidateTranscriptionService(sel Selection) Resolution {
	if sel.Empty() {
		return Resolution{Kind: KindTranscription, Reason: "a transcription service is required"}
	}
	return r.Resolve(KindTranscription, sel)
}

// ValidateLLMService resolves an LLM selection. No service means the prompt is
// written to disk without an LLM call.
func (r *Registry) ValidateLLMService(sel Selection) Resolution {
	return r.Resolve(KindLLM, sel)
}

// Key returns the API key configured for a service.
func (r *Registry) Key(service Service) string {
	return r.keys.For(service)
}
