package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"autoshow/internal/config"
	"autoshow/internal/pipeline"
	"autoshow/internal/providers"
	"autoshow/internal/rss"
	"autoshow/internal/services"
)

// bareFlagValue is what a provider flag holds when given without a model.
const bareFlagValue = "true"

type processFlags struct {
	sources   map[pipeline.SourceKind]*string
	providers map[providers.Service]*string

	prompts      []string
	customPrompt string
	keep         bool
	concurrency  int

	items    []string
	last     int
	skip     int
	order    string
	dates    []string
	lastDays int
	info     bool
}

var sourceFlagOrder = []pipeline.SourceKind{
	pipeline.SourceVideo,
	pipeline.SourcePlaylist,
	pipeline.SourceChannel,
	pipeline.SourceURLs,
	pipeline.SourceFile,
	pipeline.SourceRSS,
}

var sourceFlagUsage = map[pipeline.SourceKind]string{
	pipeline.SourceVideo:    "Process a single video URL",
	pipeline.SourcePlaylist: "Process every entry of a playlist URL",
	pipeline.SourceChannel:  "Process every video of a channel URL",
	pipeline.SourceURLs:     "Process each URL listed in a file",
	pipeline.SourceFile:     "Process a local audio or video file",
	pipeline.SourceRSS:      "Process items of a podcast feed (URL or file)",
}

func bindProcessFlags(cmd *cobra.Command) *processFlags {
	f := &processFlags{
		sources:   map[pipeline.SourceKind]*string{},
		providers: map[providers.Service]*string{},
	}
	flags := cmd.Flags()
	for _, kind := range sourceFlagOrder {
		f.sources[kind] = flags.String(string(kind), "", sourceFlagUsage[kind])
	}
	for _, kind := range []providers.Kind{providers.KindTranscription, providers.KindLLM} {
		for _, service := range providers.Services(kind) {
			provider, _ := providers.Lookup(string(service))
			value := flags.String(string(service), "", "Use "+provider.Name+" (optionally =model)")
			flags.Lookup(string(service)).NoOptDefVal = bareFlagValue
			f.providers[service] = value
		}
	}

	flags.StringSliceVar(&f.prompts, "prompt", nil, "Prompt sections to include (comma separated)")
	flags.StringVar(&f.customPrompt, "custom-prompt", "", "File whose contents replace the built prompt")
	flags.BoolVar(&f.keep, "keep", false, "Keep the intermediate WAV file")
	flags.IntVar(&f.concurrency, "concurrency", 0, "Items processed at once for multi-item sources")

	flags.StringSliceVar(&f.items, "item", nil, "RSS: process only these enclosure URLs")
	flags.IntVar(&f.last, "last", 0, "RSS: process the N most recent items")
	flags.IntVar(&f.skip, "skip", 0, "RSS: skip the first N items after ordering")
	flags.StringVar(&f.order, "order", "", "RSS: newest or oldest")
	flags.StringSliceVar(&f.dates, "date", nil, "RSS: process items published on these YYYY-MM-DD dates")
	flags.IntVar(&f.lastDays, "last-days", 0, "RSS: process items from the last N days")
	flags.BoolVar(&f.info, "info", false, "RSS: write feed info JSON instead of processing")
	return f
}

// options converts parsed flags into run options and the source argument.
func (f *processFlags) options(flags *pflag.FlagSet, cfg *config.Config) (pipeline.Options, string, error) {
	var kinds []pipeline.SourceKind
	var source string
	for _, kind := range sourceFlagOrder {
		if flags.Changed(string(kind)) {
			kinds = append(kinds, kind)
			source = strings.TrimSpace(*f.sources[kind])
		}
	}
	kind, err := pipeline.SingleSource(kinds)
	if err != nil {
		return pipeline.Options{}, "", err
	}
	if source == "" {
		return pipeline.Options{}, "", services.Wrap(services.ErrValidation, "options", "source", "--"+string(kind)+" requires a value", nil)
	}

	transcription, err := pipeline.SingleSelection(providers.KindTranscription, f.selected(flags, providers.KindTranscription))
	if err != nil {
		return pipeline.Options{}, "", err
	}
	if transcription.Empty() {
		transcription = providers.Selection{Service: cfg.Transcription.DefaultService, Option: bareFlagValue}
	}
	llm, err := pipeline.SingleSelection(providers.KindLLM, f.selected(flags, providers.KindLLM))
	if err != nil {
		return pipeline.Options{}, "", err
	}

	filters := rss.Filters{
		Items: f.items,
		Order: strings.ToLower(strings.TrimSpace(f.order)),
		Dates: f.dates,
	}
	if flags.Changed("last") {
		filters.Last = intPtr(f.last)
	}
	if flags.Changed("skip") {
		filters.Skip = intPtr(f.skip)
	}
	if flags.Changed("last-days") {
		filters.LastDays = intPtr(f.lastDays)
	}
	if kind != pipeline.SourceRSS && (f.info || usesRSSFilters(flags)) {
		return pipeline.Options{}, "", services.Wrap(services.ErrValidation, "options", "rss filters", "feed filters and --info require --rss", nil)
	}

	return pipeline.Options{
		Source:           kind,
		Transcription:    transcription,
		LLM:              llm,
		PromptSections:   f.prompts,
		CustomPrompt:     strings.TrimSpace(f.customPrompt),
		RSS:              filters,
		Info:             f.info,
		KeepIntermediate: f.keep || cfg.Workflow.KeepIntermediate,
	}, source, nil
}

func (f *processFlags) selected(flags *pflag.FlagSet, kind providers.Kind) []providers.Selection {
	var out []providers.Selection
	for _, service := range providers.Services(kind) {
		if flags.Changed(string(service)) {
			out = append(out, providers.Selection{Service: string(service), Option: *f.providers[service]})
		}
	}
	return out
}

// workers returns the requested concurrency, falling back to the config.
func (f *processFlags) workers(flags *pflag.FlagSet, cfg *config.Config) int {
	if flags.Changed("concurrency") {
		return f.concurrency
	}
	return cfg.Workflow.Concurrency
}

func usesRSSFilters(flags *pflag.FlagSet) bool {
	for _, name := range []string{"item", "last", "skip", "order", "date", "last-days"} {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}
