package main

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"autoshow/internal/services"
	"autoshow/internal/shownotes"
	"autoshow/internal/testsupport"
)

func seedNote(t *testing.T, env *cliTestEnv, title string) int64 {
	t.Helper()
	store := testsupport.MustOpenStore(t, env.cfg)
	cost := 0.0123
	id, err := store.Insert(context.Background(), shownotes.Record{
		ShowLink:             "https://example.com/" + title,
		Channel:              "Channel",
		Title:                title,
		PublishDate:          "2024-05-01",
		FrontMatter:          "---\ntitle: x\n---\n",
		Prompt:               "prompt",
		Transcript:           "words",
		LLMOutput:            "## Summary\n\nShort.",
		LLMService:           "chatgpt",
		LLMModel:             "gpt-4o-mini",
		LLMCost:              &cost,
		TranscriptionService: "whisperx",
		TranscriptionModel:   "large-v3-turbo",
		FinalCost:            &cost,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return id
}

func TestNotesListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"notes", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("notes list: %v", err)
	}
	requireContains(t, out, "No show notes stored yet")

	out, _, err = runCLI(t, []string{"notes", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("notes list --json: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", out)
	}
}

func TestNotesListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	id := seedNote(t, env, "first-episode")

	out, _, err := runCLI(t, []string{"notes", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("notes list: %v", err)
	}
	requireContains(t, out, "first-episode")
	requireContains(t, out, "$0.0123")

	out, _, err = runCLI(t, []string{"notes", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("notes list --json: %v", err)
	}
	var records []shownotes.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Fatalf("unexpected records %+v", records)
	}

	out, _, err = runCLI(t, []string{"notes", "show", strconv.FormatInt(id, 10)}, env.configPath)
	if err != nil {
		t.Fatalf("notes show: %v", err)
	}
	requireContains(t, out, "first-episode")
	requireContains(t, out, "gpt-4o-mini")
	requireContains(t, out, "## Summary")
}

func TestNotesShowRejectsBadIDs(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, arg := range []string{"abc", "0", "42"} {
		_, _, err := runCLI(t, []string{"notes", "show", arg}, env.configPath)
		if services.ExitCode(err) != 2 {
			t.Fatalf("id %q: expected exit code 2, got %v", arg, err)
		}
	}
}
