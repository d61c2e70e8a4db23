// Package whisperx runs the WhisperX speech recognizer locally through uvx and
// turns its JSON output into timestamped transcript text.
package whisperx
