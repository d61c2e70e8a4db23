// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and decodes streams and container metadata; Duration
// is the shortcut used for per-minute transcription pricing.
package ffprobe
