package preflight

import (
	"context"
	"fmt"
	"strings"

	"autoshow/internal/config"
	"autoshow/internal/providers"
	"autoshow/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks every processing run depends on. The default
// transcription backend's credential is included because a run without an
// explicit transcription flag falls back to it.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if key := CheckServiceKey(cfg, providers.Service(cfg.Transcription.DefaultService)); key.Name != "" {
		results = append(results, key)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// AsError folds failed results into a single configuration error, or nil.
func AsError(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "run checks", strings.Join(parts, "; "), nil)
}
