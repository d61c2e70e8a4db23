// Package deps resolves the external executables autoshow spawns (yt-dlp,
// ffmpeg, ffprobe, uvx) and reports whether each one is usable.
package deps
