package pipeline

import (
	"errors"
	"fmt"
)

// Stage names in execution order.
const (
	StageGenerateMarkdown = "generate-markdown"
	StageDownloadAudio    = "download-audio"
	StageTranscribe       = "run-transcription"
	StageSelectPrompt     = "select-prompt"
	StageRunLLM           = "run-llm"
)

// ErrMissingField reports a stage reading a field no earlier stage produced.
var ErrMissingField = errors.New("required field not populated")

// StageError tags a pipeline failure with the stage and item it belongs to.
type StageError struct {
	Stage string
	Item  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Item, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failed stage name when err carries a StageError.
func StageOf(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
