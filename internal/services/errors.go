package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrProviderResolution = errors.New("provider resolution error")
	ErrExternalTool       = errors.New("external call error")
	ErrUnsupportedInput   = errors.New("unsupported input")
	ErrPersistence        = errors.New("persistence error")
	ErrConfiguration      = errors.New("configuration error")
	ErrTimeout            = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification label for structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrProviderResolution):
		return "provider_resolution"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrUnsupportedInput):
		return "unsupported_input"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "external"
	}
}

// ExitCode maps a fatal error to the process exit status. Option and provider
// problems exit with 2 so scripts can tell them apart from runtime failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation), errors.Is(err, ErrProviderResolution), errors.Is(err, ErrConfiguration):
		return 2
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
