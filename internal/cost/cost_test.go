package cost_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"autoshow/internal/cost"
	"autoshow/internal/providers"
	"autoshow/internal/services"
)

type fixedDuration struct {
	seconds float64
	err     error
}

func (p fixedDuration) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

func TestEstimateTranscription(t *testing.T) {
	model := providers.Model{ID: "test", CostPerMinuteCents: 0.25}
	got, err := cost.EstimateTranscription(context.Background(), fixedDuration{seconds: 120}, "a.wav", model)
	if err != nil {
		t.Fatalf("EstimateTranscription: %v", err)
	}
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5 cents, got %v", got)
	}
}

func TestEstimateTranscriptionPropagatesDurationFailure(t *testing.T) {
	_, err := cost.EstimateTranscription(context.Background(), fixedDuration{err: errors.New("not a number")}, "a.wav", providers.Model{CostPerMinuteCents: 1})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestFreeModelsCostNothing(t *testing.T) {
	if got := cost.TranscriptionCents(3600, providers.Model{}); got != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
	breakdown := cost.LLMTokens(providers.Model{}, 1_000_000, 1_000_000)
	if breakdown.TotalCost != 0 || breakdown.InputCost != 0 || breakdown.OutputCost != 0 {
		t.Fatalf("expected zero costs, got %+v", breakdown)
	}
	if breakdown.InputTokens != 1_000_000 {
		t.Fatalf("token counts should be retained, got %+v", breakdown)
	}
}

func TestLLMTokensPricing(t *testing.T) {
	model := providers.Model{InputCostPer1M: 2.0, OutputCostPer1M: 8.0}
	got := cost.LLMTokens(model, 500_000, 250_000)
	if math.Abs(got.InputCost-1.0) > 1e-9 || math.Abs(got.OutputCost-2.0) > 1e-9 || math.Abs(got.TotalCost-3.0) > 1e-9 {
		t.Fatalf("unexpected breakdown %+v", got)
	}
}

func TestLLMRoundsNoiseToZero(t *testing.T) {
	model := providers.Model{InputCostPer1M: 0.15, OutputCostPer1M: 0.60}
	got := cost.LLMTokens(model, 10, 1)
	if got.InputCost != 0 || got.OutputCost != 0 || got.TotalCost != 0 {
		t.Fatalf("expected sub-noise costs rounded to zero, got %+v", got)
	}
}

func TestLLMPrefersReportedUsage(t *testing.T) {
	model := providers.Model{InputCostPer1M: 1, OutputCostPer1M: 1}
	estimated := cost.LLM(model, "one two", "three four five", providers.Completion{Text: "six seven"})
	if estimated.InputTokens != 5 || estimated.OutputTokens != 2 {
		t.Fatalf("unexpected estimate %+v", estimated)
	}
	reported := cost.LLM(model, "one two", "three", providers.Completion{
		Text:     "x",
		Usage:    providers.Usage{Input: 1200, Output: 300, Total: 1500},
		Reported: true,
	})
	if reported.InputTokens != 1200 || reported.OutputTokens != 300 {
		t.Fatalf("expected reported usage, got %+v", reported)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := cost.EstimateTokens("  hello\tworld\n again  "); got != 3 {
		t.Fatalf("expected 3 tokens, got %d", got)
	}
	if got := cost.EstimateTokens(""); got != 0 {
		t.Fatalf("expected 0 tokens, got %d", got)
	}
}

func TestCentsToDollars(t *testing.T) {
	if got := cost.CentsToDollars(50); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("unexpected dollars %v", got)
	}
}
