package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/loadmore/pkg/dom"
)

// Expansion is the result of expanding one start URL.
type Expansion struct {
	Doc   *dom.Document // partial on error, nil if the start page failed
	Stats Stats
	Err   error
}

// BatchScroller expands many listings with a worker pool.
type BatchScroller struct {
	scroller *Scroller
	config   Config
}

// NewBatchScroller creates a batch scroller around scroller.
func NewBatchScroller(scroller *Scroller, config Config) *BatchScroller {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	return &BatchScroller{
		scroller: scroller,
		config:   config,
	}
}

// ExpandAll expands every URL in urls. Repeated URLs are expanded once and
// every distinct URL gets an entry in the result map; the first failure is
// returned alongside the partial results.
func (b *BatchScroller) ExpandAll(ctx context.Context, urls []string) (map[string]Expansion, error) {
	start := time.Now()
	urls = distinct(urls)
	results := make(map[string]Expansion, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	bufferSize := b.config.BufferSize
	if bufferSize <= 0 {
		bufferSize = len(urls)
	}

	b.scroller.logger.Info().
		Int("urls", len(urls)).
		Int("workers", b.config.MaxConcurrency).
		Msg("Starting batch expansion")

	queue := make(chan string, bufferSize)
	expansions := make(chan Expansion, bufferSize)

	go func() {
		defer close(queue)
		for _, u := range urls {
			select {
			case queue <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < b.config.MaxConcurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, queue, expansions, &wg, i)
	}

	go func() {
		wg.Wait()
		close(expansions)
	}()

	var firstErr error
	failed := 0
	for e := range expansions {
		results[e.Stats.URL] = e
		if e.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = e.Err
			}
		}
	}

	if firstErr == nil && ctx.Err() != nil && len(results) < len(urls) {
		firstErr = ctx.Err()
	}

	if firstErr != nil {
		b.scroller.logger.Warn().
			Err(firstErr).
			Int("failed", failed).
			Int("done", len(results)).
			Int("total", len(urls)).
			Msg("Batch expansion incomplete - returning partial results")
		return results, fmt.Errorf("batch expansion (%d/%d failed): %w", failed, len(urls), firstErr)
	}

	b.scroller.logger.Info().
		Int("urls", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Batch expansion complete")

	return results, nil
}

// worker expands URLs from the queue.
func (b *BatchScroller) worker(ctx context.Context, queue <-chan string, out chan<- Expansion, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for u := range queue {
		select {
		case <-ctx.Done():
			b.scroller.logger.Debug().
				Int("worker_id", workerID).
				Int("processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		doc, stats, err := b.scroller.Expand(ctx, u)
		stats.URL = u
		out <- Expansion{Doc: doc, Stats: stats, Err: err}
		processed++
	}

	if processed > 0 {
		b.scroller.logger.Debug().
			Int("worker_id", workerID).
			Int("processed", processed).
			Msg("Worker completed")
	}
}

// distinct drops repeated URLs, keeping first occurrences in order.
func distinct(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
