// Package rss turns a podcast feed into the list of items a run processes.
//
// Fetch loads the document from disk or over HTTP (retried, each attempt
// capped at ten seconds). Parse normalizes entries to Item, keeping only
// audio and video enclosures. Filters.Validate rejects conflicting selection
// flags up front and Select applies them in a fixed precedence. WriteInfo
// dumps the selection for --info runs.
package rss
