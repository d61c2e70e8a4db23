package batch

import (
	"context"
	"sync"

	"autoshow/internal/pipeline"
)

// runPool runs fn over items with at most limit in flight. Results keep the
// order of items. Items not started before ctx is done get ctx's error.
func runPool(ctx context.Context, limit int, items []pipeline.Item, fn func(context.Context, pipeline.Item) Outcome) []Outcome {
	limit = max(limit, 1)
	out := make([]Outcome, len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < len(items); j++ {
				out[j] = Outcome{Item: items[j], Err: ctx.Err()}
			}
			wg.Wait()
			return out
		}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			out[i] = fn(ctx, item)
		}()
	}
	wg.Wait()
	return out
}
