package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unconfigured command, got %#v", results[2])
	}
}

func TestCheckBinariesCapturesVersion(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "yt-dlp")
	script := []byte("#!/bin/sh\necho\necho '2024.08.06'\necho 'extra'\n")
	if err := os.WriteFile(tool, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	results := CheckBinaries(context.Background(), []Requirement{{Name: "yt-dlp", Command: "yt-dlp", VersionArgs: []string{"--version"}}})
	if !results[0].Available {
		t.Fatalf("expected yt-dlp on PATH, got %#v", results[0])
	}
	if results[0].Version != "2024.08.06" {
		t.Fatalf("unexpected version %q", results[0].Version)
	}
}

func TestVersionFailureKeepsAvailability(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	results := CheckBinaries(context.Background(), []Requirement{{Name: "FFmpeg", Command: tool, VersionArgs: []string{"-version"}}})
	if !results[0].Available || results[0].Version != "" {
		t.Fatalf("unexpected status %#v", results[0])
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
		{Name: "c", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "c" {
		t.Fatalf("unexpected missing set %#v", missing)
	}
}
