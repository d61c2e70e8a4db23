// Package services defines shared utilities consumed by the pipeline stages and
// the external integrations they call.
//
// Key responsibilities:
//   - Context helpers that stamp source identifiers, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     validation, provider resolution, external call, unsupported input, or
//     persistence problems.
//   - Vendor clients for transcription and LLM backends live in subpackages.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
