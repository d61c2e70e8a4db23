package providers

import "context"

// Usage reports token counts returned by an LLM backend.
type Usage struct {
	Input  int
	Output int
	Total  int
}

// Completion is the result of one LLM call. Reported is false when the backend
// returned no usage block.
type Completion struct {
	Text     string
	Usage    Usage
	Reported bool
}

// Transcriber converts a canonical WAV file into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, model string) (string, error)
}

// Completer runs one prompt plus transcript through an LLM.
type Completer interface {
	Complete(ctx context.Context, prompt, transcript, model string) (Completion, error)
}
