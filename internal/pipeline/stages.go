package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autoshow/internal/cost"
	"autoshow/internal/fileutil"
	"autoshow/internal/logging"
	"autoshow/internal/metadata"
	"autoshow/internal/services"
	"autoshow/internal/shownotes"
)

// generateMarkdown derives the identity and front matter for the item.
func (o *Orchestrator) generateMarkdown(ctx context.Context, pc *ProcessContext) error {
	var (
		id  metadata.Identity
		err error
	)
	switch pc.Item.Kind {
	case SourceVideo:
		if o.deps.Metadata == nil {
			return services.Wrap(services.ErrConfiguration, StageGenerateMarkdown, "metadata", "no metadata extractor configured", nil)
		}
		info, mErr := o.deps.Metadata.Metadata(ctx, pc.Item.Ref)
		if mErr != nil {
			return services.Wrap(services.ErrExternalTool, StageGenerateMarkdown, "extract metadata", pc.Item.Ref, mErr)
		}
		id = metadata.FromVideo(pc.Item.Ref, info)
	case SourceFile:
		id, err = metadata.FromFile(pc.Item.Ref)
		if err != nil {
			return services.Wrap(services.ErrValidation, StageGenerateMarkdown, "file metadata", pc.Item.Ref, err)
		}
	case SourceRSS:
		if pc.Item.Feed == nil {
			return missing("feed item")
		}
		id = metadata.FromRSSItem(*pc.Item.Feed)
	default:
		return services.Wrap(services.ErrValidation, StageGenerateMarkdown, "identity", fmt.Sprintf("unsupported item kind %q", pc.Item.Kind), nil)
	}

	frontMatter, err := metadata.FrontMatter(id.Note)
	if err != nil {
		return err
	}
	pc.setIdentity(id, frontMatter)
	return nil
}

// downloadAudio produces the canonical WAV.
func (o *Orchestrator) downloadAudio(ctx context.Context, pc *ProcessContext) error {
	id, _, err := pc.requireIdentity()
	if err != nil {
		return err
	}
	var wav string
	if pc.Item.Kind == SourceFile {
		wav, err = o.deps.Audio.FromFile(ctx, pc.Item.Ref, id.BaseName)
	} else {
		wav, err = o.deps.Audio.FromURL(ctx, pc.Item.Ref, id.BaseName)
	}
	if err != nil {
		return err
	}
	pc.setWAV(wav)
	return nil
}

// transcribe runs the bound transcriber and prices the audio.
func (o *Orchestrator) transcribe(ctx context.Context, plan Plan, pc *ProcessContext) error {
	wav, err := pc.requireWAV()
	if err != nil {
		return err
	}
	if plan.transcriber == nil {
		return services.Wrap(services.ErrProviderResolution, StageTranscribe, "dispatch", "plan has no transcriber; call Prepare first", nil)
	}
	text, err := plan.transcriber.Transcribe(ctx, wav, plan.Transcription.ModelID)
	if err != nil {
		return err
	}
	cents, err := cost.EstimateTranscription(ctx, o.deps.Durations, wav, plan.Transcription.Model)
	if err != nil {
		return err
	}
	pc.setTranscription(Transcription{
		Text:               strings.TrimSpace(text),
		Service:            string(plan.Transcription.Service),
		Model:              plan.Transcription.ModelID,
		CostPerMinuteCents: plan.Transcription.Model.CostPerMinuteCents,
		CostCents:          cents,
	})
	return nil
}

// selectPrompt assembles the prompt text.
func (o *Orchestrator) selectPrompt(plan Plan, pc *ProcessContext) error {
	text, err := o.deps.Prompts.Assemble(plan.Options.CustomPrompt, plan.Options.PromptSections)
	if err != nil {
		return err
	}
	pc.setPrompt(text)
	return nil
}

// runLLM writes the markdown output, running the LLM when one is selected,
// then persists the record.
func (o *Orchestrator) runLLM(ctx context.Context, plan Plan, pc *ProcessContext) (Result, error) {
	id, frontMatter, err := pc.requireIdentity()
	if err != nil {
		return Result{}, err
	}
	tx, err := pc.requireTranscription()
	if err != nil {
		return Result{}, err
	}
	prompt, err := pc.requirePrompt()
	if err != nil {
		return Result{}, err
	}

	var (
		completion *Completion
		path       string
		body       string
	)
	if plan.LLM.Skip {
		path = filepath.Join(o.outputDir, id.BaseName+"-prompt.md")
		body = renderMarkdown(frontMatter, prompt, tx.Text)
	} else {
		if plan.completer == nil {
			return Result{}, services.Wrap(services.ErrProviderResolution, StageRunLLM, "dispatch", "plan has no completer; call Prepare first", nil)
		}
		resp, err := plan.completer.Complete(ctx, prompt, tx.Text, plan.LLM.ModelID)
		if err != nil {
			return Result{}, err
		}
		completion = &Completion{
			Output:  strings.TrimSpace(resp.Text),
			Service: string(plan.LLM.Service),
			Model:   plan.LLM.ModelID,
			Cost:    cost.LLM(plan.LLM.Model, prompt, tx.Text, resp),
		}
		path = filepath.Join(o.outputDir, fmt.Sprintf("%s-%s-shownotes.md", id.BaseName, plan.LLM.Service))
		body = renderMarkdown(frontMatter, completion.Output, tx.Text)
	}

	if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, StageRunLLM, "write markdown", path, err)
	}

	rec := buildRecord(id.Note, frontMatter, prompt, tx, completion)
	rec.CreatedAt = o.now()
	recID, err := o.deps.Store.Insert(ctx, rec)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPersistence, StageRunLLM, "insert show note",
			fmt.Sprintf("markdown kept at %s", path), err)
	}
	rec.ID = recID

	logging.WithContext(ctx, o.logger).Info("show note saved",
		logging.String(logging.FieldEventType, "show_note_saved"),
		logging.Any("id", recID),
		logging.String("path", path),
		logging.Bool("llm", completion != nil),
		logging.Float64("final_cost", *rec.FinalCost),
	)
	return Result{
		ID:           recID,
		MarkdownPath: path,
		FrontMatter:  frontMatter,
		Prompt:       prompt,
		Transcript:   tx.Text,
		LLMOutput:    rec.LLMOutput,
		Record:       rec,
	}, nil
}

// renderMarkdown lays out front matter, the lead body (prompt or LLM output),
// and the transcript under a "## Transcript" heading.
func renderMarkdown(frontMatter, lead, transcript string) string {
	var b strings.Builder
	b.WriteString(frontMatter)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(lead))
	b.WriteString("\n\n## Transcript\n\n")
	b.WriteString(transcript)
	b.WriteString("\n")
	return b.String()
}

func buildRecord(note metadata.ShowNote, frontMatter, prompt string, tx Transcription, completion *Completion) shownotes.Record {
	txCost := cost.CentsToDollars(tx.CostCents)
	final := txCost
	rec := shownotes.Record{
		ShowLink:             note.ShowLink,
		Channel:              note.Channel,
		ChannelURL:           note.ChannelURL,
		Title:                note.Title,
		Description:          note.Description,
		PublishDate:          note.PublishDate,
		CoverImage:           note.CoverImage,
		FrontMatter:          frontMatter,
		Prompt:               prompt,
		Transcript:           tx.Text,
		TranscriptionService: tx.Service,
		TranscriptionModel:   tx.Model,
		TranscriptionCost:    &txCost,
	}
	if completion != nil {
		llmCost := completion.Cost.TotalCost
		final += llmCost
		rec.LLMOutput = completion.Output
		rec.LLMService = completion.Service
		rec.LLMModel = completion.Model
		rec.LLMCost = &llmCost
	}
	rec.FinalCost = &final
	return rec
}
