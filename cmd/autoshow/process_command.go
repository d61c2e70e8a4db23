package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"autoshow/internal/audio"
	"autoshow/internal/batch"
	"autoshow/internal/config"
	"autoshow/internal/cost"
	"autoshow/internal/dispatch"
	"autoshow/internal/logging"
	"autoshow/internal/pipeline"
	"autoshow/internal/preflight"
	"autoshow/internal/prompt"
	"autoshow/internal/providers"
	"autoshow/internal/retry"
	"autoshow/internal/rss"
	"autoshow/internal/services"
	"autoshow/internal/services/ytdlp"
	"autoshow/internal/shownotes"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags *processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Generate show notes for a video, playlist, channel, URL list, file, or feed",
		Example: `  autoshow process --video https://www.youtube.com/watch?v=MORMZXEaONk
  autoshow process --file episode.mp3 --deepgram --claude=claude-3-7-sonnet-latest
  autoshow process --rss https://feeds.example.com/show.xml --last 2 --chatgpt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, source, err := flags.options(cmd.Flags(), cfg)
			if err != nil {
				return err
			}
			if err := preflight.AsError(preflight.RunAll(cmd.Context(), cfg)); err != nil {
				return err
			}

			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg, logger, flags.workers(cmd.Flags(), cfg))
			if err != nil {
				return err
			}
			defer rt.close(logger)

			plan, err := rt.orchestrator.Prepare(opts)
			if err != nil {
				return err
			}
			summary, err := rt.runner.Run(cmd.Context(), plan, source)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}
	flags = bindProcessFlags(cmd)
	return cmd
}

// processRuntime holds the collaborators wired for one process invocation.
type processRuntime struct {
	store        *shownotes.Store
	orchestrator *pipeline.Orchestrator
	runner       *batch.Runner
}

func newRuntime(cfg *config.Config, logger *slog.Logger, concurrency int) (*processRuntime, error) {
	registry := providers.NewRegistry(cfg.ProviderKeys())
	httpClient := &http.Client{}
	policy := retry.DefaultPolicy()
	policy.Logger = logger

	catalog, err := prompt.LoadCatalog()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "load prompt catalog", "", err)
	}
	store, err := shownotes.Open(cfg.DatabasePath())
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "cli", "open store", cfg.DatabasePath(), err)
	}

	yt := ytdlp.New(cfg.Tools.YtDlp, ytdlp.WithRetryPolicy(policy))
	orchestrator := pipeline.New(cfg.Paths.OutputDir, registry, pipeline.Deps{
		Metadata:  yt,
		Audio:     audio.NewAcquirer(cfg.Paths.OutputDir, cfg.Tools.FFmpeg, yt, logger, audio.WithFFprobe(cfg.Tools.FFprobe)),
		Prompts:   catalog,
		Dispatch:  dispatch.New(cfg, registry, logger, dispatch.WithHTTPClient(httpClient), dispatch.WithRetryPolicy(policy)),
		Durations: cost.FFprobe{Binary: cfg.Tools.FFprobe},
		Store:     store,
	}, logger)
	runner := batch.NewRunner(
		orchestrator,
		yt,
		rss.NewFetcher(httpClient, policy),
		cfg.Paths.OutputDir,
		logger,
		batch.WithConcurrency(concurrency),
	)
	return &processRuntime{store: store, orchestrator: orchestrator, runner: runner}, nil
}

func (r *processRuntime) close(logger *slog.Logger) {
	if err := r.store.Close(); err != nil {
		logging.WarnWithContext(logger, "failed to close show-note store", "store_close_failed", logging.Error(err))
	}
}

func printSummary(out io.Writer, summary batch.Summary) {
	if summary.InfoPath != "" {
		fmt.Fprintf(out, "Wrote feed info to %s\n", summary.InfoPath)
		return
	}
	for _, o := range summary.Outcomes {
		if o.Err == nil {
			fmt.Fprintf(out, "Wrote %s (show note #%d)\n", o.Result.MarkdownPath, o.Result.ID)
		}
	}
	if len(summary.Outcomes) > 1 {
		fmt.Fprintf(out, "Processed %d, skipped %d\n", summary.Processed, summary.Skipped)
	}
}
