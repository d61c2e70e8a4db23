package metadata_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"autoshow/internal/metadata"
	"autoshow/internal/rss"
	"autoshow/internal/services/ytdlp"
)

var safeName = regexp.MustCompile(`^[a-z0-9-]+$`)

func TestFromVideo(t *testing.T) {
	id := metadata.FromVideo("https://youtu.be/abc", ytdlp.Info{
		WebpageURL: "https://www.youtube.com/watch?v=abc",
		Channel:    "Example",
		Title:      "Hello, World! (Part 2)",
		UploadDate: "2024-03-15",
	})
	if id.BaseName != "2024-03-15-hello-world-part-2" {
		t.Fatalf("unexpected base name %q", id.BaseName)
	}
	if id.Note.ShowLink != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("unexpected show link %q", id.Note.ShowLink)
	}
}

func TestFromVideoFallsBackToSourceURL(t *testing.T) {
	id := metadata.FromVideo("https://youtu.be/abc", ytdlp.Info{Title: "x"})
	if id.Note.ShowLink != "https://youtu.be/abc" {
		t.Fatalf("unexpected show link %q", id.Note.ShowLink)
	}
	if id.BaseName != "x" {
		t.Fatalf("unexpected base name %q", id.BaseName)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "My_Great Episode.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mod := time.Date(2023, 11, 5, 10, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	id, err := metadata.FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if id.BaseName != "my-great-episode" {
		t.Fatalf("unexpected base name %q", id.BaseName)
	}
	if id.Note.Title != "My Great Episode" {
		t.Fatalf("unexpected title %q", id.Note.Title)
	}
	if id.Note.PublishDate != "2023-11-05" {
		t.Fatalf("unexpected publish date %q", id.Note.PublishDate)
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := metadata.FromFile(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromRSSItem(t *testing.T) {
	id := metadata.FromRSSItem(rss.Item{
		PublishDate: "2024-01-02",
		Title:       "Episode #12: Ünïcode & Friends",
		ShowLink:    "https://cdn.example.com/12.mp3",
		Channel:     "Pod",
		Description: "desc",
	})
	if !safeName.MatchString(id.BaseName) {
		t.Fatalf("base name %q has unsafe characters", id.BaseName)
	}
	if !strings.HasPrefix(id.BaseName, "2024-01-02-episode-12") {
		t.Fatalf("unexpected base name %q", id.BaseName)
	}
	if id.Note.Description != "desc" || id.Note.Channel != "Pod" {
		t.Fatalf("unexpected note %+v", id.Note)
	}
}

func TestFrontMatterRoundTrips(t *testing.T) {
	note := metadata.ShowNote{
		ShowLink:    "https://example.com/ep",
		Channel:     "Channel: The Show",
		Title:       `He said "hi" - #1`,
		PublishDate: "2024-01-02",
	}
	fm, err := metadata.FrontMatter(note)
	if err != nil {
		t.Fatalf("FrontMatter: %v", err)
	}
	if !strings.HasPrefix(fm, "---\n") || !strings.HasSuffix(fm, "---\n") {
		t.Fatalf("front matter not delimited:\n%s", fm)
	}
	order := []string{"showLink:", "channel:", "channelURL:", "title:", "description:", "publishDate:", "coverImage:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(fm, "\n"+key)
		if idx <= last {
			t.Fatalf("key %s out of order in:\n%s", key, fm)
		}
		last = idx
	}

	body := strings.TrimSuffix(strings.TrimPrefix(fm, "---\n"), "---\n")
	var decoded map[string]string
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("front matter is not valid yaml: %v", err)
	}
	if decoded["title"] != note.Title || decoded["channel"] != note.Channel || decoded["coverImage"] != "" {
		t.Fatalf("unexpected decoded values %v", decoded)
	}
}
