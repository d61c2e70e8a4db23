// Package pipeline turns one source item into one persisted show note.
//
// Prepare validates provider selections and binds their backends into a
// Plan. Process then runs five stages in a fixed order: generate-markdown,
// download-audio, run-transcription, select-prompt, and run-llm. Stages hand
// results forward through a ProcessContext; reading a field no earlier stage
// produced fails with ErrMissingField. Any failure stops the item and is
// returned as a StageError naming the stage and the item.
//
// When no LLM is selected the run-llm stage writes <base>-prompt.md so the
// prompt can be pasted into a chat UI by hand; otherwise it writes
// <base>-<service>-shownotes.md. Both branches persist a record. The markdown
// is written before the insert so a database failure never loses output.
//
// Concurrent items that resolve to the same base name share output files, so
// Process lets only one of them past identity resolution at a time.
package pipeline
