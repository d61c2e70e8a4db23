package providers

import "strings"

// Kind separates transcription backends from LLM backends.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindLLM           Kind = "llm"
)

// Service names a provider. The set is closed; dispatch switches over it.
type Service string

const (
	WhisperX Service = "whisperx"
	Deepgram Service = "deepgram"
	Assembly Service = "assembly"

	ChatGPT  Service = "chatgpt"
	Claude   Service = "claude"
	DeepSeek Service = "deepseek"
	Ollama   Service = "ollama"
)

// Model is one catalog entry. Transcription models carry a per-minute rate in
// cents; LLM models carry dollar rates per million tokens.
type Model struct {
	ID                 string
	Name               string
	CostPerMinuteCents float64
	InputCostPer1M     float64
	OutputCostPer1M    float64
}

// Provider describes a service and its models. The first model is the default.
type Provider struct {
	Service     Service
	Kind        Kind
	Name        string
	KeyEnv      string
	RequiresKey bool
	Models      []Model
}

// DefaultModel returns the model used when the caller passes a bare flag.
func (p Provider) DefaultModel() Model {
	return p.Models[0]
}

// FindModel performs a case-insensitive lookup against the provider's models.
func (p Provider) FindModel(id string) (Model, bool) {
	id = strings.TrimSpace(id)
	for _, model := range p.Models {
		if strings.EqualFold(model.ID, id) {
			return model, true
		}
	}
	return Model{}, false
}

var catalog = []Provider{
	{
		Service: WhisperX,
		Kind:    KindTranscription,
		Name:    "WhisperX (local)",
		Models: []Model{
			{ID: "large-v3-turbo", Name: "Whisper Large v3 Turbo"},
			{ID: "large-v3", Name: "Whisper Large v3"},
			{ID: "medium", Name: "Whisper Medium"},
			{ID: "small", Name: "Whisper Small"},
			{ID: "base", Name: "Whisper Base"},
			{ID: "tiny", Name: "Whisper Tiny"},
		},
	},
	{
		Service:     Deepgram,
		Kind:        KindTranscription,
		Name:        "Deepgram",
		KeyEnv:      "DEEPGRAM_API_KEY",
		RequiresKey: true,
		Models: []Model{
			{ID: "nova-2", Name: "Nova-2", CostPerMinuteCents: 0.43},
			{ID: "nova", Name: "Nova", CostPerMinuteCents: 0.43},
			{ID: "enhanced", Name: "Enhanced", CostPerMinuteCents: 1.45},
			{ID: "base", Name: "Base", CostPerMinuteCents: 1.25},
		},
	},
	{
		Service:     Assembly,
		Kind:        KindTranscription,
		Name:        "AssemblyAI",
		KeyEnv:      "ASSEMBLY_API_KEY",
		RequiresKey: true,
		Models: []Model{
			{ID: "best", Name: "Best", CostPerMinuteCents: 0.62},
			{ID: "nano", Name: "Nano", CostPerMinuteCents: 0.20},
		},
	},
	{
		Service:     ChatGPT,
		Kind:        KindLLM,
		Name:        "OpenAI ChatGPT",
		KeyEnv:      "OPENAI_API_KEY",
		RequiresKey: true,
		Models: []Model{
			{ID: "gpt-4o-mini", Name: "GPT-4o Mini", InputCostPer1M: 0.15, OutputCostPer1M: 0.60},
			{ID: "gpt-4o", Name: "GPT-4o", InputCostPer1M: 2.50, OutputCostPer1M: 10.00},
			{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", InputCostPer1M: 0.40, OutputCostPer1M: 1.60},
			{ID: "gpt-4.1", Name: "GPT-4.1", InputCostPer1M: 2.00, OutputCostPer1M: 8.00},
			{ID: "o3-mini", Name: "o3 Mini", InputCostPer1M: 1.10, OutputCostPer1M: 4.40},
		},
	},
	{
		Service:     Claude,
		Kind:        KindLLM,
		Name:        "Anthropic Claude",
		KeyEnv:      "ANTHROPIC_API_KEY",
		RequiresKey: true,
		Models: []Model{
			{ID: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku", InputCostPer1M: 0.80, OutputCostPer1M: 4.00},
			{ID: "claude-3-7-sonnet-latest", Name: "Claude 3.7 Sonnet", InputCostPer1M: 3.00, OutputCostPer1M: 15.00},
			{ID: "claude-3-opus-latest", Name: "Claude 3 Opus", InputCostPer1M: 15.00, OutputCostPer1M: 75.00},
		},
	},
	{
		Service:     DeepSeek,
		Kind:        KindLLM,
		Name:        "DeepSeek",
		KeyEnv:      "DEEPSEEK_API_KEY",
		RequiresKey: true,
		Models: []Model{
			{ID: "deepseek-chat", Name: "DeepSeek Chat", InputCostPer1M: 0.27, OutputCostPer1M: 1.10},
			{ID: "deepseek-reasoner", Name: "DeepSeek Reasoner", InputCostPer1M: 0.55, OutputCostPer1M: 2.19},
		},
	},
	{
		Service: Ollama,
		Kind:    KindLLM,
		Name:    "Ollama (local)",
		Models: []Model{
			{ID: "qwen2.5:0.5b", Name: "Qwen 2.5 0.5B"},
			{ID: "llama3.2:1b", Name: "Llama 3.2 1B"},
			{ID: "llama3.2:3b", Name: "Llama 3.2 3B"},
		},
	},
}

// Lookup returns the catalog entry for a service name (case-insensitive).
func Lookup(name string) (Provider, bool) {
	name = strings.TrimSpace(name)
	for _, provider := range catalog {
		if strings.EqualFold(string(provider.Service), name) {
			return provider, true
		}
	}
	return Provider{}, false
}

// Services lists the service names of the given kind in catalog order.
func Services(kind Kind) []Service {
	var out []Service
	for _, provider := range catalog {
		if provider.Kind == kind {
			out = append(out, provider.Service)
		}
	}
	return out
}

// IsService reports whether name is a known service of the given kind.
func IsService(kind Kind, name string) bool {
	provider, ok := Lookup(name)
	return ok && provider.Kind == kind
}
