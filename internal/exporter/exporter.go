// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exporter runs the corpus export loop: many independent records
// encoded by concurrent workers, written to one stream in input order.
package exporter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/bibexport/internal/bib"
	"github.com/pdiddy/bibexport/internal/cache"
	"github.com/pdiddy/bibexport/pkg/types"
)

// Summary holds counts from one export run.
type Summary struct {
	Exported int
	Cached   int
	Failed   int
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Exported + s.Cached + s.Failed
}

// Exporter drives the engine over an item collection.
type Exporter struct {
	engine *bib.Engine
	cfg    types.ExportConfig
	store  *cache.Store
}

// New builds an exporter. store may be nil, in which case caching is off
// regardless of configuration.
func New(engine *bib.Engine, cfg types.ExportConfig, store *cache.Store) *Exporter {
	return &Exporter{engine: engine, cfg: cfg, store: store}
}

// outcome is one item's result, held until its turn in the output order.
type outcome struct {
	text      string
	warnings  []string
	fromCache bool
	err       error
}

// Export encodes every item and writes the records to out in input order.
// Per-item failures are reported to progress and counted, never fatal to
// the run. The context is checked between records; cancellation stops the
// run with the records completed so far unwritten.
func (x *Exporter) Export(ctx context.Context, items []types.Item, out, progress io.Writer) (Summary, error) {
	workers := x.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	results := make([]outcome, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = x.renderOne(ctx, &items[i])
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	var summary Summary
	for i, res := range results {
		id := items[i].ID
		switch {
		case res.err != nil:
			fmt.Fprintf(progress, "failed  %s: %v\n", id, res.err)
			summary.Failed++
			continue
		case res.fromCache:
			fmt.Fprintf(progress, "cached  %s\n", id)
			summary.Cached++
		default:
			fmt.Fprintf(progress, "exported %s\n", id)
			summary.Exported++
		}
		for _, w := range res.warnings {
			fmt.Fprintf(progress, "warning %s: %s\n", id, w)
		}
		if _, err := io.WriteString(out, res.text); err != nil {
			return summary, fmt.Errorf("writing export: %w", err)
		}
	}

	fmt.Fprintf(progress, "\nexported: %d, cached: %d, failed: %d\n",
		summary.Exported, summary.Cached, summary.Failed)
	return summary, nil
}

func (x *Exporter) renderOne(ctx context.Context, item *types.Item) outcome {
	caching := x.cfg.Caching && x.store != nil

	if caching {
		text, err := x.store.Get(ctx, item.ID, x.cfg.Dialect, item.Key())
		if err != nil {
			return outcome{err: err}
		}
		if text != "" {
			return outcome{text: text, fromCache: true}
		}
	}

	res, err := x.engine.Render(item)
	if err != nil {
		return outcome{err: err}
	}

	if caching && res.Cacheable {
		if err := x.store.Put(ctx, item.ID, x.cfg.Dialect, res.Citekey, res.Text); err != nil {
			return outcome{err: err}
		}
	}
	return outcome{text: res.Text, warnings: res.Warnings}
}
