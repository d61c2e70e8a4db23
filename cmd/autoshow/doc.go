// Command autoshow turns videos, playlists, channels, URL lists, local media
// files, and podcast feeds into markdown show notes.
//
// Each item is described, converted to 16 kHz mono WAV, transcribed, paired
// with an assembled prompt, optionally sent to an LLM, written under the
// output directory, and recorded in the local SQLite store. The notes, status,
// and config subcommands inspect that store and the environment.
package main
