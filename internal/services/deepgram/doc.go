// Package deepgram is a minimal client for Deepgram's pre-recorded
// transcription API.
package deepgram
