// Package prompt assembles the instructions sent to the LLM.
//
// Sections live in an embedded YAML catalog. A custom prompt file replaces
// section assembly entirely.
package prompt
