package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"autoshow/internal/cost"
	"autoshow/internal/fileutil"
	"autoshow/internal/logging"
	"autoshow/internal/providers"
	"autoshow/internal/services"
	"autoshow/internal/services/ytdlp"
	"autoshow/internal/shownotes"
)

// MetadataSource extracts remote video metadata.
type MetadataSource interface {
	Metadata(ctx context.Context, url string) (ytdlp.Info, error)
}

// AudioSource produces the canonical WAV for an item.
type AudioSource interface {
	FromURL(ctx context.Context, url, baseName string) (string, error)
	FromFile(ctx context.Context, path, baseName string) (string, error)
}

// PromptSource assembles the LLM prompt.
type PromptSource interface {
	Assemble(customPath string, sections []string) (string, error)
}

// Dispatcher binds resolved providers to backends.
type Dispatcher interface {
	Transcriber(res providers.Resolution) (providers.Transcriber, error)
	Completer(res providers.Resolution) (providers.Completer, error)
}

// Store persists finished show notes.
type Store interface {
	Insert(ctx context.Context, rec shownotes.Record) (int64, error)
}

// Deps are the collaborators the orchestrator drives.
type Deps struct {
	Metadata  MetadataSource
	Audio     AudioSource
	Prompts   PromptSource
	Dispatch  Dispatcher
	Durations cost.DurationReader
	Store     Store
}

// Orchestrator drives one item at a time through the five stages. It is
// safe for concurrent use when its Deps are. Items that resolve to the same
// base name run one after another.
type Orchestrator struct {
	outputDir string
	registry  *providers.Registry
	deps      Deps
	logger    *slog.Logger
	now       func() time.Time
	paths     pathLocks
}

// New constructs an orchestrator writing markdown into outputDir.
func New(outputDir string, registry *providers.Registry, deps Deps, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		outputDir: outputDir,
		registry:  registry,
		deps:      deps,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		now:       time.Now,
	}
}

// Prepare validates provider selections and binds their backends. Any
// failure here aborts the run before work starts.
func (o *Orchestrator) Prepare(opts Options) (Plan, error) {
	plan := Plan{Options: opts}

	plan.Transcription = o.registry.ValidateTranscriptionService(opts.Transcription)
	if !plan.Transcription.Valid {
		return Plan{}, plan.Transcription.Err()
	}
	plan.LLM = o.registry.ValidateLLMService(opts.LLM)
	if !plan.LLM.Valid {
		return Plan{}, plan.LLM.Err()
	}

	transcriber, err := o.deps.Dispatch.Transcriber(plan.Transcription)
	if err != nil {
		return Plan{}, err
	}
	plan.transcriber = transcriber
	if !plan.LLM.Skip {
		completer, err := o.deps.Dispatch.Completer(plan.LLM)
		if err != nil {
			return Plan{}, err
		}
		plan.completer = completer
	}
	return plan, nil
}

// Result is the outcome of a successful item.
type Result struct {
	ID           int64
	MarkdownPath string
	FrontMatter  string
	Prompt       string
	Transcript   string
	LLMOutput    string
	Record       shownotes.Record
}

// Process runs item through every stage in order and persists the show
// note. The first failing stage aborts the item with a StageError. Unless
// the plan keeps intermediates, the canonical WAV is removed afterwards.
// The item's base name stays claimed from audio acquisition until that
// cleanup has run.
func (o *Orchestrator) Process(ctx context.Context, plan Plan, item Item) (Result, error) {
	ctx = services.WithItem(ctx, item.Ref)
	pc := NewProcessContext(item)
	var release func()
	defer func() {
		o.cleanup(ctx, plan, pc)
		if release != nil {
			release()
		}
	}()

	var result Result
	stages := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{StageGenerateMarkdown, func(ctx context.Context) error { return o.generateMarkdown(ctx, pc) }},
		{StageDownloadAudio, func(ctx context.Context) error {
			var err error
			if release, err = o.claimOutputs(ctx, pc); err != nil {
				return err
			}
			return o.downloadAudio(ctx, pc)
		}},
		{StageTranscribe, func(ctx context.Context) error { return o.transcribe(ctx, plan, pc) }},
		{StageSelectPrompt, func(ctx context.Context) error { return o.selectPrompt(plan, pc) }},
		{StageRunLLM, func(ctx context.Context) error {
			var err error
			result, err = o.runLLM(ctx, plan, pc)
			return err
		}},
	}
	for _, st := range stages {
		if err := o.runStage(ctx, st.name, item.Ref, st.run); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

func (o *Orchestrator) runStage(ctx context.Context, name, item string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, o.logger)
	started := o.now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx); err != nil {
		stageErr := &StageError{Stage: name, Item: item, Err: err}
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
		)
		return stageErr
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", o.now().Sub(started)),
	)
	return nil
}

// claimOutputs waits until no other item is writing files under pc's base
// name.
func (o *Orchestrator) claimOutputs(ctx context.Context, pc *ProcessContext) (func(), error) {
	id, _, err := pc.requireIdentity()
	if err != nil {
		return nil, err
	}
	return o.paths.acquire(ctx, filepath.Join(o.outputDir, id.BaseName))
}

func (o *Orchestrator) cleanup(ctx context.Context, plan Plan, pc *ProcessContext) {
	if plan.Options.KeepIntermediate || pc.wavPath == "" {
		return
	}
	if err := fileutil.RemoveIfExists(pc.wavPath); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "failed to remove intermediate wav", "cleanup_failed",
			logging.String("path", pc.wavPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "wav left on disk"),
		)
	}
}
