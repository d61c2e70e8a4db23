package pipeline_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autoshow/internal/config"
	"autoshow/internal/logging"
	"autoshow/internal/pipeline"
	"autoshow/internal/prompt"
	"autoshow/internal/providers"
	"autoshow/internal/rss"
	"autoshow/internal/services"
	"autoshow/internal/services/ytdlp"
	"autoshow/internal/shownotes"
	"autoshow/internal/testsupport"
)

type fakeMetadata struct {
	info ytdlp.Info
	err  error
}

func (f fakeMetadata) Metadata(context.Context, string) (ytdlp.Info, error) {
	return f.info, f.err
}

type fakeAudio struct {
	dir string
	err error
}

func (f fakeAudio) write(base string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, base+".wav")
	return path, os.WriteFile(path, []byte("RIFF"), 0o644)
}

func (f fakeAudio) FromURL(_ context.Context, _ string, base string) (string, error) {
	return f.write(base)
}

func (f fakeAudio) FromFile(_ context.Context, _ string, base string) (string, error) {
	return f.write(base)
}

type fakeTranscriber struct {
	text  string
	err   error
	model string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, model string) (string, error) {
	f.model = model
	return f.text, f.err
}

type fakeCompleter struct {
	completion providers.Completion
	err        error
	prompt     string
	transcript string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt, transcript, _ string) (providers.Completion, error) {
	f.prompt, f.transcript = prompt, transcript
	return f.completion, f.err
}

type fakeDispatcher struct {
	transcriber *fakeTranscriber
	completer   *fakeCompleter
}

func (d fakeDispatcher) Transcriber(providers.Resolution) (providers.Transcriber, error) {
	return d.transcriber, nil
}

func (d fakeDispatcher) Completer(providers.Resolution) (providers.Completer, error) {
	return d.completer, nil
}

type fixedDuration float64

func (p fixedDuration) Duration(context.Context, string) (float64, error) {
	return float64(p), nil
}

type failingStore struct{}

func (failingStore) Insert(context.Context, shownotes.Record) (int64, error) {
	return 0, errors.New("disk full")
}

type harness struct {
	cfg         *config.Config
	store       *shownotes.Store
	transcriber *fakeTranscriber
	completer   *fakeCompleter
	deps        pipeline.Deps
	registry    *providers.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	catalog, err := prompt.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	h := &harness{
		cfg:         cfg,
		store:       store,
		transcriber: &fakeTranscriber{text: "[00:00:00] hello world"},
		completer: &fakeCompleter{completion: providers.Completion{
			Text:     "## Episode Summary\n\nA fine episode.",
			Usage:    providers.Usage{Input: 1000, Output: 200, Total: 1200},
			Reported: true,
		}},
		registry: providers.NewRegistry(providers.Keys{OpenAI: "sk-test", Deepgram: "dg-test"}),
	}
	h.deps = pipeline.Deps{
		Metadata:  fakeMetadata{info: ytdlp.Info{
			WebpageURL: "https://www.youtube.com/watch?v=abc",
			Channel:    "Example",
			Title:      "Great Talk",
			UploadDate: "2024-03-15",
		}},
		Audio:     fakeAudio{dir: cfg.Paths.OutputDir},
		Prompts:   catalog,
		Dispatch:  fakeDispatcher{transcriber: h.transcriber, completer: h.completer},
		Durations: fixedDuration(120),
		Store:     store,
	}
	return h
}

func (h *harness) orchestrator() *pipeline.Orchestrator {
	return pipeline.New(h.cfg.Paths.OutputDir, h.registry, h.deps, nil)
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testsupport.WriteWAV(t, path, 160)
	return path
}

func TestProcessLocalFileWithoutLLMWritesPromptFile(t *testing.T) {
	h := newHarness(t)
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{
		Source:        pipeline.SourceFile,
		Transcription: providers.Selection{Service: "whisperx", Option: "true"},
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	input := writeInput(t, "My Episode.wav")
	res, err := orch.Process(context.Background(), plan, pipeline.FileItem(input))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantPath := filepath.Join(h.cfg.Paths.OutputDir, "my-episode-prompt.md")
	if res.MarkdownPath != wantPath {
		t.Fatalf("unexpected markdown path %q", res.MarkdownPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	content := string(data)
	parts := []string{res.FrontMatter, res.Prompt, "## Transcript", "[00:00:00] hello world"}
	last := -1
	for _, part := range parts {
		idx := strings.Index(content, part)
		if idx < 0 || idx <= last {
			t.Fatalf("part %q missing or out of order in:\n%s", part, content)
		}
		last = idx
	}
	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("markdown should start with front matter:\n%s", content)
	}

	rec, err := h.store.GetByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.LLMService != "" || rec.LLMModel != "" || rec.LLMCost != nil || rec.LLMOutput != "" {
		t.Fatalf("expected no llm fields, got %+v", rec)
	}
	if rec.TranscriptionService != "whisperx" || rec.TranscriptionModel != "large-v3-turbo" {
		t.Fatalf("unexpected transcription bookkeeping %+v", rec)
	}
	if h.transcriber.model != "large-v3-turbo" {
		t.Fatalf("transcriber got model %q", h.transcriber.model)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.OutputDir, "my-episode.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wav cleanup, got %v", err)
	}
}

func TestProcessVideoWithLLMWritesShowNotes(t *testing.T) {
	h := newHarness(t)
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{
		Source:         pipeline.SourceVideo,
		Transcription:  providers.Selection{Service: "deepgram", Option: "nova-2"},
		LLM:            providers.Selection{Service: "chatgpt", Option: "true"},
		PromptSections: []string{"summary"},
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	res, err := orch.Process(context.Background(), plan, pipeline.VideoItem("https://youtu.be/abc"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	wantPath := filepath.Join(h.cfg.Paths.OutputDir, "2024-03-15-great-talk-chatgpt-shownotes.md")
	if res.MarkdownPath != wantPath {
		t.Fatalf("unexpected markdown path %q", res.MarkdownPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	content := string(data)
	if strings.Contains(content, res.Prompt) {
		t.Fatal("show notes file should contain llm output, not the prompt")
	}
	fm := strings.Index(content, "title: \"Great Talk\"")
	out := strings.Index(content, "A fine episode.")
	tr := strings.Index(content, "## Transcript")
	if fm < 0 || out < fm || tr < out {
		t.Fatalf("unexpected layout:\n%s", content)
	}
	if h.completer.transcript != "[00:00:00] hello world" || h.completer.prompt != res.Prompt {
		t.Fatal("completer did not receive prompt and transcript")
	}

	rec, err := h.store.GetByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.LLMService != "chatgpt" || rec.LLMModel != "gpt-4o-mini" {
		t.Fatalf("unexpected llm bookkeeping %+v", rec)
	}
	if rec.ShowLink != "https://www.youtube.com/watch?v=abc" || rec.PublishDate != "2024-03-15" {
		t.Fatalf("unexpected metadata %+v", rec)
	}
	if rec.TranscriptionCost == nil || math.Abs(*rec.TranscriptionCost-0.0086) > 1e-9 {
		t.Fatalf("expected 0.0086 transcription dollars, got %v", rec.TranscriptionCost)
	}
	if rec.LLMCost == nil || rec.FinalCost == nil {
		t.Fatalf("expected costs, got %+v", rec)
	}
	if math.Abs(*rec.FinalCost-(*rec.LLMCost+*rec.TranscriptionCost)) > 1e-9 {
		t.Fatalf("final cost %v is not the sum of %v and %v", *rec.FinalCost, *rec.LLMCost, *rec.TranscriptionCost)
	}
}

func TestProcessRSSItemUsesFeedMetadata(t *testing.T) {
	h := newHarness(t)
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{Source: pipeline.SourceRSS, Transcription: providers.Selection{Service: "whisperx"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	entry := rss.Item{
		PublishDate: "2024-01-02",
		Title:       "Pilot",
		ShowLink:    "https://cdn.example.com/pilot.mp3",
		Channel:     "Pod",
		Description: "The first one.",
	}
	res, err := orch.Process(context.Background(), plan, pipeline.RSSItem(entry))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if filepath.Base(res.MarkdownPath) != "2024-01-02-pilot-prompt.md" {
		t.Fatalf("unexpected markdown path %q", res.MarkdownPath)
	}
	if res.Record.Description != "The first one." || res.Record.Channel != "Pod" {
		t.Fatalf("unexpected record %+v", res.Record)
	}
}

func TestProcessStageFailureIsTagged(t *testing.T) {
	h := newHarness(t)
	h.transcriber.err = errors.New("provider exploded")
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{Source: pipeline.SourceVideo, Transcription: providers.Selection{Service: "whisperx"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	_, err = orch.Process(context.Background(), plan, pipeline.VideoItem("https://youtu.be/abc"))
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != pipeline.StageTranscribe || stageErr.Item != "https://youtu.be/abc" {
		t.Fatalf("unexpected stage error %+v", stageErr)
	}
	all, err := h.store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("failed item must not be persisted, got %d records", len(all))
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.OutputDir, "2024-03-15-great-talk.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wav cleanup after failure, got %v", err)
	}
}

func TestProcessMetadataFailureStopsFirstStage(t *testing.T) {
	h := newHarness(t)
	h.deps.Metadata = fakeMetadata{err: errors.New("yt-dlp gone")}
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{Source: pipeline.SourceVideo, Transcription: providers.Selection{Service: "whisperx"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	_, err = orch.Process(context.Background(), plan, pipeline.VideoItem("https://youtu.be/abc"))
	if stage, ok := pipeline.StageOf(err); !ok || stage != pipeline.StageGenerateMarkdown {
		t.Fatalf("expected generate-markdown failure, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestProcessKeepIntermediate(t *testing.T) {
	h := newHarness(t)
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{
		Source:           pipeline.SourceFile,
		Transcription:    providers.Selection{Service: "whisperx"},
		KeepIntermediate: true,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := orch.Process(context.Background(), plan, pipeline.FileItem(writeInput(t, "keep.wav"))); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.OutputDir, "keep.wav")); err != nil {
		t.Fatalf("expected wav to be kept: %v", err)
	}
}

func TestProcessPersistenceFailureKeepsMarkdown(t *testing.T) {
	h := newHarness(t)
	h.deps.Store = failingStore{}
	orch := h.orchestrator()
	plan, err := orch.Prepare(pipeline.Options{Source: pipeline.SourceFile, Transcription: providers.Selection{Service: "whisperx"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	_, err = orch.Process(context.Background(), plan, pipeline.FileItem(writeInput(t, "lost.wav")))
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(h.cfg.Paths.OutputDir, "lost-prompt.md")); statErr != nil {
		t.Fatalf("markdown should survive a failed insert: %v", statErr)
	}
}

func TestPrepareRejectsInvalidProviders(t *testing.T) {
	h := newHarness(t)
	h.registry = providers.NewRegistry(providers.Keys{})
	orch := h.orchestrator()

	tests := []struct {
		name string
		opts pipeline.Options
	}{
		{"no transcription", pipeline.Options{}},
		{"unknown transcription", pipeline.Options{Transcription: providers.Selection{Service: "parrot"}}},
		{"llm without key", pipeline.Options{
			Transcription: providers.Selection{Service: "whisperx"},
			LLM:           providers.Selection{Service: "chatgpt", Option: "true"},
		}},
		{"unknown model", pipeline.Options{Transcription: providers.Selection{Service: "whisperx", Option: "tiny-banana"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orch.Prepare(tt.opts)
			if !errors.Is(err, services.ErrProviderResolution) {
				t.Fatalf("expected provider resolution error, got %v", err)
			}
			if services.ExitCode(err) != 2 {
				t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
			}
		})
	}
}

func TestSingleSourceAndSelection(t *testing.T) {
	if _, err := pipeline.SingleSource(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for no source, got %v", err)
	}
	if _, err := pipeline.SingleSource([]pipeline.SourceKind{pipeline.SourceVideo, pipeline.SourceRSS}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for two sources, got %v", err)
	}
	if got, err := pipeline.SingleSource([]pipeline.SourceKind{pipeline.SourceFile}); err != nil || got != pipeline.SourceFile {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	sel, err := pipeline.SingleSelection(providers.KindLLM, nil)
	if err != nil || !sel.Empty() {
		t.Fatalf("expected empty selection, got %+v, %v", sel, err)
	}
	_, err = pipeline.SingleSelection(providers.KindLLM, []providers.Selection{{Service: "chatgpt"}, {Service: "claude"}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for two llms, got %v", err)
	}
}

func TestShowNoteSavedLogRecordsWhetherLLMRan(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	orch := pipeline.New(h.cfg.Paths.OutputDir, h.registry, h.deps, logger)
	plan, err := orch.Prepare(pipeline.Options{
		Source:        pipeline.SourceFile,
		Transcription: providers.Selection{Service: "whisperx", Option: "true"},
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := orch.Process(context.Background(), plan, pipeline.FileItem(writeInput(t, "talk.wav"))); err != nil {
		t.Fatalf("Process: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var payload map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &payload); err != nil {
			t.Fatalf("decode log line %q: %v", scanner.Text(), err)
		}
		if payload["event_type"] != "show_note_saved" {
			continue
		}
		if payload["llm"] != false {
			t.Fatalf("expected llm=false for a prompt-only run, got %v", payload)
		}
		return
	}
	t.Fatalf("no show_note_saved record in:\n%s", buf.String())
}
