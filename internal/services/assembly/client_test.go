package assembly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestTranscribePollsUntilComplete(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "aai" {
			t.Fatalf("missing auth header")
		}
		_, _ = w.Write([]byte(`{"upload_url":"https://cdn.example/a"}`))
	})
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req["audio_url"] != "https://cdn.example/a" || req["speech_model"] != "nano" {
			t.Fatalf("unexpected request %v", req)
		}
		_, _ = w.Write([]byte(`{"id":"t1","status":"queued"}`))
	})
	mux.HandleFunc("GET /transcript/t1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"id":"t1","status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"t1","status":"completed","text":" done "}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	client := NewClient(Config{APIKey: "aai", BaseURL: server.URL}, server.Client())
	var waits int
	client.wait = func(context.Context, time.Duration) error {
		waits++
		return nil
	}
	got, err := client.Transcribe(context.Background(), path, "nano")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "done" || waits != 2 {
		t.Fatalf("unexpected result %q after %d waits", got, waits)
	}
}

func TestTranscribeReportsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"upload_url":"u"}`))
	})
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"t2"}`))
	})
	mux.HandleFunc("GET /transcript/t2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"t2","status":"error","error":"bad audio"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	client := NewClient(Config{APIKey: "aai", BaseURL: server.URL}, nil)
	if _, err := client.Transcribe(context.Background(), path, "best"); err == nil {
		t.Fatal("expected transcription error")
	}
}
