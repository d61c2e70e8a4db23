// Package claude adapts the llmkit Anthropic client to the providers.Completer
// capability.
package claude
