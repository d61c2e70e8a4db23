package cost

import (
	"context"
	"strings"

	"autoshow/internal/media/ffprobe"
	"autoshow/internal/providers"
	"autoshow/internal/services"
)

// noiseFloor is the smallest dollar amount worth reporting.
const noiseFloor = 0.00001

// TranscriptionCents returns the cost in cents of durationSeconds of audio at
// the model's per-minute rate.
func TranscriptionCents(durationSeconds float64, model providers.Model) float64 {
	if model.CostPerMinuteCents == 0 || durationSeconds <= 0 {
		return 0
	}
	return (durationSeconds / 60) * model.CostPerMinuteCents
}

// DurationReader measures audio duration in seconds.
type DurationReader interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobe measures duration with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Duration implements DurationReader.
func (p FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	return ffprobe.Duration(ctx, p.Binary, path)
}

// EstimateTranscription measures wavPath and prices it. A duration that cannot
// be parsed is an error.
func EstimateTranscription(ctx context.Context, durations DurationReader, wavPath string, model providers.Model) (float64, error) {
	seconds, err := durations.Duration(ctx, wavPath)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "cost", "measure duration", wavPath, err)
	}
	return TranscriptionCents(seconds, model), nil
}

// EstimateTokens approximates a token count by counting whitespace-separated
// words. Real tokenizers produce different counts; the result is only good
// for a rough price estimate.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}

// LLMBreakdown is an LLM cost in dollars.
type LLMBreakdown struct {
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	TotalCost    float64
}

// LLM prices a completion. Provider-reported usage wins over the word-count
// estimate when present.
func LLM(model providers.Model, prompt, transcript string, completion providers.Completion) LLMBreakdown {
	inputTokens := EstimateTokens(prompt + "\n" + transcript)
	outputTokens := EstimateTokens(completion.Text)
	if completion.Reported {
		if completion.Usage.Input > 0 {
			inputTokens = completion.Usage.Input
		}
		if completion.Usage.Output > 0 {
			outputTokens = completion.Usage.Output
		}
	}
	return LLMTokens(model, inputTokens, outputTokens)
}

// LLMTokens prices explicit token counts against the model's per-million rates.
func LLMTokens(model providers.Model, inputTokens, outputTokens int) LLMBreakdown {
	out := LLMBreakdown{InputTokens: inputTokens, OutputTokens: outputTokens}
	if model.InputCostPer1M == 0 && model.OutputCostPer1M == 0 {
		return out
	}
	out.InputCost = round(float64(inputTokens) / 1_000_000 * model.InputCostPer1M)
	out.OutputCost = round(float64(outputTokens) / 1_000_000 * model.OutputCostPer1M)
	out.TotalCost = round(out.InputCost + out.OutputCost)
	return out
}

// CentsToDollars converts a transcription cost for persistence.
func CentsToDollars(cents float64) float64 {
	return round(cents / 100)
}

func round(v float64) float64 {
	if v < noiseFloor {
		return 0
	}
	return v
}
