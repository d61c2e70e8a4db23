package pipeline

import (
	"fmt"

	"autoshow/internal/cost"
	"autoshow/internal/metadata"
)

// Transcription is what stage 3 produces.
type Transcription struct {
	Text    string
	Service string
	Model   string
	// CostPerMinuteCents is the rate the cost was computed from.
	CostPerMinuteCents float64
	CostCents          float64
}

// Completion is what stage 5 produces when an LLM ran.
type Completion struct {
	Output  string
	Service string
	Model   string
	Cost    cost.LLMBreakdown
}

// ProcessContext accumulates stage outputs for one item. Each stage writes
// its own fields once; later stages read them through require methods that
// fail instead of returning zero values.
type ProcessContext struct {
	Item Item

	identity      *metadata.Identity
	frontMatter   string
	wavPath       string
	transcription *Transcription
	prompt        *string
}

// NewProcessContext starts an empty context for item.
func NewProcessContext(item Item) *ProcessContext {
	return &ProcessContext{Item: item}
}

func (pc *ProcessContext) setIdentity(id metadata.Identity, frontMatter string) {
	pc.identity = &id
	pc.frontMatter = frontMatter
}

func (pc *ProcessContext) setWAV(path string) {
	pc.wavPath = path
}

func (pc *ProcessContext) setTranscription(t Transcription) {
	pc.transcription = &t
}

func (pc *ProcessContext) setPrompt(p string) {
	pc.prompt = &p
}

func (pc *ProcessContext) requireIdentity() (metadata.Identity, string, error) {
	if pc.identity == nil {
		return metadata.Identity{}, "", missing("identity")
	}
	return *pc.identity, pc.frontMatter, nil
}

func (pc *ProcessContext) requireWAV() (string, error) {
	if pc.wavPath == "" {
		return "", missing("wav path")
	}
	return pc.wavPath, nil
}

func (pc *ProcessContext) requireTranscription() (Transcription, error) {
	if pc.transcription == nil {
		return Transcription{}, missing("transcript")
	}
	return *pc.transcription, nil
}

func (pc *ProcessContext) requirePrompt() (string, error) {
	if pc.prompt == nil {
		return "", missing("prompt")
	}
	return *pc.prompt, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
