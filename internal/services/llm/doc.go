// Package llm provides a chat completion client for OpenAI-compatible APIs.
//
// The same client serves ChatGPT, DeepSeek, and a local Ollama server; only
// the base URL and key differ. The prompt is sent as the system message and
// the transcript as the user message. Token usage is returned when the API
// reports it so cost estimates can prefer real counts over word counts.
//
// The client makes exactly one request per call. Backoff and per-attempt
// timeouts belong to the caller.
package llm
