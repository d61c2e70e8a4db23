// Package ytdlp mediates access to the yt-dlp CLI used for remote sources.
//
// It covers the three invocations the pipeline needs: printing a fixed list
// of metadata fields, downloading audio straight to the canonical WAV format,
// and flat-listing playlist or channel entries. Each invocation runs under the
// shared retry policy; tests inject an Executor instead of spawning yt-dlp.
package ytdlp
