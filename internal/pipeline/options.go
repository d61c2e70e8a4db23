package pipeline

import (
	"fmt"
	"strings"

	"autoshow/internal/providers"
	"autoshow/internal/rss"
	"autoshow/internal/services"
)

// SourceKind names where the items of a run come from.
type SourceKind string

// Source kinds accepted by a run.
const (
	SourceVideo    SourceKind = "video"
	SourcePlaylist SourceKind = "playlist"
	SourceChannel  SourceKind = "channel"
	SourceURLs     SourceKind = "urls"
	SourceFile     SourceKind = "file"
	SourceRSS      SourceKind = "rss"
)

// Options is resolved once per invocation and shared by every item.
type Options struct {
	Source           SourceKind
	Transcription    providers.Selection
	LLM              providers.Selection
	PromptSections   []string
	CustomPrompt     string
	RSS              rss.Filters
	Info             bool
	KeepIntermediate bool
}

// SingleSource returns the one selected source kind. Zero or several
// selections are a validation error.
func SingleSource(chosen []SourceKind) (SourceKind, error) {
	switch len(chosen) {
	case 1:
		return chosen[0], nil
	case 0:
		return "", services.Wrap(services.ErrValidation, "options", "source", "one of --video, --playlist, --channel, --urls, --file, --rss is required", nil)
	default:
		names := make([]string, len(chosen))
		for i, k := range chosen {
			names[i] = string(k)
		}
		return "", services.Wrap(services.ErrValidation, "options", "source",
			fmt.Sprintf("only one source may be given, got %s", strings.Join(names, ", ")), nil)
	}
}

// SingleSelection returns the one selected provider of kind, or an empty
// selection when none was chosen. Several selections are a validation error.
func SingleSelection(kind providers.Kind, chosen []providers.Selection) (providers.Selection, error) {
	switch len(chosen) {
	case 0:
		return providers.Selection{}, nil
	case 1:
		return chosen[0], nil
	default:
		names := make([]string, len(chosen))
		for i, sel := range chosen {
			names[i] = sel.Service
		}
		return providers.Selection{}, services.Wrap(services.ErrValidation, "options", string(kind),
			fmt.Sprintf("only one %s service may be selected, got %s", kind, strings.Join(names, ", ")), nil)
	}
}

// Plan is a validated Options with its providers resolved and bound to
// backends. It is read-only and shared across items.
type Plan struct {
	Options       Options
	Transcription providers.Resolution
	LLM           providers.Resolution

	transcriber providers.Transcriber
	completer   providers.Completer
}

// Item is one source reference handed to the orchestrator.
type Item struct {
	// Kind is SourceVideo, SourceFile, or SourceRSS.
	Kind SourceKind
	// Ref is the URL or file path.
	Ref string
	// Feed carries the normalized entry for SourceRSS items.
	Feed *rss.Item
}

// VideoItem wraps a remote URL.
func VideoItem(url string) Item {
	return Item{Kind: SourceVideo, Ref: strings.TrimSpace(url)}
}

// FileItem wraps a local path.
func FileItem(path string) Item {
	return Item{Kind: SourceFile, Ref: strings.TrimSpace(path)}
}

// RSSItem wraps a normalized feed entry.
func RSSItem(entry rss.Item) Item {
	return Item{Kind: SourceRSS, Ref: entry.ShowLink, Feed: &entry}
}
