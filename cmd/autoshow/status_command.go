package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"autoshow/internal/deps"
	"autoshow/internal/preflight"
	"autoshow/internal/services"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkOllama bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories, and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			for _, s := range statuses {
				lines = append(lines, renderStatusLine(s.Name, depKind(s), depMessage(s), colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			dirResults := []preflight.Result{
				preflight.CheckDirectoryAccess("Output", cfg.Paths.OutputDir),
				preflight.CheckDirectoryAccess("Data", cfg.Paths.DataDir),
				preflight.CheckDirectoryAccess("Logs", cfg.Paths.LogDir),
			}
			for _, r := range dirResults {
				lines = append(lines, renderResult(r, statusError, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Credentials", colorize)...)
			lines = append(lines, renderStatusLine("Default transcription", statusInfo, cfg.Transcription.DefaultService, colorize))
			for _, r := range preflight.CheckProviderKeys(cfg) {
				lines = append(lines, renderResult(r, statusWarn, colorize))
			}
			if checkOllama {
				lines = append(lines, renderResult(preflight.CheckOllama(cmd.Context(), &http.Client{}, cfg.LLM.OllamaBaseURL), statusWarn, colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return statusProblems(statuses, dirResults)
		},
	}
	cmd.Flags().BoolVar(&checkOllama, "ollama", false, "Also check the local Ollama server")
	return cmd
}

func depKind(s deps.Status) statusKind {
	switch {
	case s.Available:
		return statusOK
	case s.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func depMessage(s deps.Status) string {
	if !s.Available {
		return s.Detail
	}
	if s.Version != "" {
		return s.Version
	}
	return s.Path
}

func renderResult(r preflight.Result, failKind statusKind, colorize bool) string {
	if r.Passed {
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	}
	return renderStatusLine(r.Name, failKind, r.Detail, colorize)
}

// statusProblems fails the command when a required binary or directory is unusable.
func statusProblems(statuses []deps.Status, dirs []preflight.Result) error {
	var problems []string
	for _, s := range deps.MissingRequired(statuses) {
		problems = append(problems, s.Name)
	}
	for _, r := range preflight.Failed(dirs) {
		problems = append(problems, r.Name+" directory")
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "cli", "status",
		fmt.Sprintf("%d problem(s): %s", len(problems), strings.Join(problems, ", ")), nil)
}
