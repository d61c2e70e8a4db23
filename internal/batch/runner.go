package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autoshow/internal/logging"
	"autoshow/internal/pipeline"
	"autoshow/internal/rss"
	"autoshow/internal/services"
)

// Processor runs one item through the pipeline.
type Processor interface {
	Process(ctx context.Context, plan pipeline.Plan, item pipeline.Item) (pipeline.Result, error)
}

// Lister flat-lists playlist and channel entries.
type Lister interface {
	ListEntries(ctx context.Context, url string) ([]string, error)
}

// FeedFetcher loads a raw feed document.
type FeedFetcher interface {
	Fetch(ctx context.Context, source string) (string, error)
}

// Outcome is the result of one item.
type Outcome struct {
	Item   pipeline.Item
	Result pipeline.Result
	Err    error
}

// Summary reports a finished run. Outcomes follow input order.
type Summary struct {
	Processed int
	Skipped   int
	Outcomes  []Outcome
	// InfoPath is set when the run only dumped feed info.
	InfoPath string
}

// Runner drives a source through the pipeline.
type Runner struct {
	processor   Processor
	lister      Lister
	feeds       FeedFetcher
	outputDir   string
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many items run at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = max(n, 1)
	}
}

// WithClock overrides the time source used for RSS date filters.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(processor Processor, lister Lister, feeds FeedFetcher, outputDir string, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		processor:   processor,
		lister:      lister,
		feeds:       feeds,
		outputDir:   outputDir,
		concurrency: 1,
		logger:      logging.NewComponentLogger(logger, "batch"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes source according to plan.Options.Source. Single-source runs
// (video, file) return the item's error. Multi-item runs log and skip failed
// items and only fail for source-level problems such as an unreadable feed.
func (r *Runner) Run(ctx context.Context, plan pipeline.Plan, source string) (Summary, error) {
	lock, err := acquireLock(r.outputDir)
	if err != nil {
		return Summary{}, err
	}
	defer lock.release(r.logger)

	kind := plan.Options.Source
	switch kind {
	case pipeline.SourceVideo, pipeline.SourceFile:
		item := pipeline.VideoItem(source)
		if kind == pipeline.SourceFile {
			item = pipeline.FileItem(source)
		}
		summary := r.runItems(ctx, plan, []pipeline.Item{item})
		return summary, summary.Outcomes[0].Err
	case pipeline.SourcePlaylist, pipeline.SourceChannel:
		items, err := r.listEntries(ctx, source)
		if err != nil {
			return Summary{}, err
		}
		return r.runItems(ctx, plan, items), nil
	case pipeline.SourceURLs:
		items, err := readURLFile(source)
		if err != nil {
			return Summary{}, err
		}
		return r.runItems(ctx, plan, items), nil
	case pipeline.SourceRSS:
		return r.runFeed(ctx, plan, source)
	default:
		return Summary{}, services.Wrap(services.ErrValidation, "batch", "run", fmt.Sprintf("unknown source kind %q", kind), nil)
	}
}

func (r *Runner) listEntries(ctx context.Context, url string) ([]pipeline.Item, error) {
	if r.lister == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "list entries", "no lister configured", nil)
	}
	urls, err := r.lister.ListEntries(ctx, url)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "batch", "list entries", url, err)
	}
	items := make([]pipeline.Item, len(urls))
	for i, u := range urls {
		items[i] = pipeline.VideoItem(u)
	}
	return items, nil
}

func (r *Runner) runFeed(ctx context.Context, plan pipeline.Plan, source string) (Summary, error) {
	filters := plan.Options.RSS
	if err := filters.Validate(); err != nil {
		return Summary{}, err
	}
	if r.feeds == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "fetch feed", "no feed fetcher configured", nil)
	}
	body, err := r.feeds.Fetch(ctx, source)
	if err != nil {
		return Summary{}, err
	}
	now := r.now()
	feed, err := rss.Parse(body, now)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrUnsupportedInput, "batch", "parse feed", source, err)
	}
	selected := rss.Select(feed.Items, filters, now)

	if plan.Options.Info {
		path, err := rss.WriteInfo(r.outputDir, feed, selected)
		if err != nil {
			return Summary{}, services.Wrap(services.ErrExternalTool, "batch", "write feed info", r.outputDir, err)
		}
		r.logger.Info("feed info written",
			logging.String(logging.FieldEventType, "feed_info"),
			logging.String("path", path),
			logging.Int("items", len(selected)),
		)
		return Summary{InfoPath: path}, nil
	}
	if len(selected) == 0 {
		r.logger.Info("no feed items matched the filters",
			logging.String(logging.FieldEventType, "feed_empty"),
			logging.String("feed", feed.Title),
			logging.Int("feed_items", len(feed.Items)),
		)
		return Summary{}, nil
	}

	items := make([]pipeline.Item, len(selected))
	for i, entry := range selected {
		items[i] = pipeline.RSSItem(entry)
	}
	return r.runItems(ctx, plan, items), nil
}

// runItems processes items on a bounded pool and logs the summary.
func (r *Runner) runItems(ctx context.Context, plan pipeline.Plan, items []pipeline.Item) Summary {
	outcomes := runPool(ctx, r.concurrency, items, func(ctx context.Context, item pipeline.Item) Outcome {
		itemCtx := services.WithRequestID(services.WithItem(ctx, item.Ref), r.newID())
		res, err := r.processor.Process(itemCtx, plan, item)
		if err != nil {
			attrs := []logging.Attr{
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "item skipped"),
			}
			if stage, ok := pipeline.StageOf(err); ok {
				attrs = append(attrs, logging.String(logging.FieldStage, stage))
			}
			logging.WarnWithContext(logging.WithContext(itemCtx, r.logger), "item failed", "item_skipped", attrs...)
		}
		return Outcome{Item: item, Result: res, Err: err}
	})

	summary := Summary{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Skipped++
		} else {
			summary.Processed++
		}
	}
	r.logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_summary"),
		logging.String("source", string(plan.Options.Source)),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary
}
