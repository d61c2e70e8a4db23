// Package providers holds the static catalog of transcription and LLM
// services, their models, and per-model cost coefficients.
//
// The Registry resolves a user selection (service name plus optional model
// flag value) into a Resolution, checking API key presence and model
// existence. The catalog is read-only and safe to share across goroutines.
// Concrete backends live under internal/services and are selected by
// internal/dispatch; callers only see the Transcriber and Completer
// capabilities declared here.
package providers
