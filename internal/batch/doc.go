// Package batch expands a source into items and feeds them to the pipeline.
//
// Playlist, channel, URL-file, and RSS runs isolate per-item failures: each
// failure is logged with its stage and item, counted as skipped, and the run
// continues. Failures that concern the source itself (listing, reading the
// URL file, fetching or parsing the feed, invalid RSS filters) abort the run.
// Items run on a bounded pool; the summary keeps input order. A file lock in
// the output directory keeps two runs from writing there at once.
package batch
