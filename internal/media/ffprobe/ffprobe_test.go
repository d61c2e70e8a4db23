package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDurationSeconds(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio"}, {CodecType: "video"}},
		Format:  Format{Duration: "120.000000"},
	}
	got, err := result.DurationSeconds()
	if err != nil {
		t.Fatalf("DurationSeconds: %v", err)
	}
	if got != 120 {
		t.Fatalf("unexpected duration: %v", got)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
}

func TestDurationSecondsRejectsInvalid(t *testing.T) {
	for _, value := range []string{"", "N/A", "bad", "-3"} {
		_, err := Result{Format: Format{Duration: value}}.DurationSeconds()
		if !errors.Is(err, ErrNoDuration) {
			t.Fatalf("duration %q: expected ErrNoDuration, got %v", value, err)
		}
	}
}

func TestDurationRunsBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\necho '{\"streams\":[{\"codec_type\":\"audio\",\"sample_rate\":\"16000\",\"channels\":1}],\"format\":{\"duration\":\"90.5\"}}'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	got, err := Duration(context.Background(), script, "/tmp/audio.wav")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 90.5 {
		t.Fatalf("unexpected duration %v", got)
	}
}

func TestInspectReportsFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'no such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), script, "/missing.wav"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
}
