// Package audio acquires the canonical 16 kHz mono 16-bit PCM WAV for an item.
//
// Remote sources go through a Downloader (yt-dlp); local files are sniffed
// with mimetype, checked against SupportedExtensions, and transcoded with
// ffmpeg. A WAV already sitting at the destination is renamed aside first.
package audio
