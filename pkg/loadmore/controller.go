package loadmore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/loadmore/pkg/dom"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("loadmore.pkg.loadmore")

// ErrNoContainer is returned when the anchor is not inside a listing with
// an item container.
var ErrNoContainer = errors.New("listing container not found")

// Request describes one page load.
type Request struct {
	// URL is the next-page link as found on the anchor.
	URL string

	// Container receives the fetched items.
	Container Element

	// Anchor is removed once the items are in place. May be nil.
	Anchor Element
}

// Result describes a completed load.
type Result struct {
	URL      string
	Bytes    int
	Duration time.Duration
}

// Outcome is the result of an asynchronous load.
type Outcome struct {
	Result *Result
	Err    error
}

// Controller fetches a next page and splices its post list into the document.
type Controller struct {
	doc       Document
	fetcher   Fetcher
	selector  string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger

	// then runs after every successful splice once the loader was cleared.
	then func()

	inflight sync.WaitGroup
}

// NewController creates a controller. selector locates the post list in
// fetched pages.
func NewController(doc Document, fetcher Fetcher, selector string, logger zerolog.Logger) *Controller {
	if doc == nil || fetcher == nil {
		panic("document and fetcher cannot be nil")
	}
	return &Controller{
		doc:      doc,
		fetcher:  fetcher,
		selector: selector,
		logger:   logger,
	}
}

// SetSanitizer filters fetched fragments through p before splicing.
// A nil policy splices the markup verbatim.
func (c *Controller) SetSanitizer(p *bluemonday.Policy) {
	c.sanitizer = p
}

// OnSuccess sets the continuation run after a successful load.
func (c *Controller) OnSuccess(fn func()) {
	c.then = fn
}

// Load runs one fetch-and-splice cycle.
func (c *Controller) Load(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	startTime := time.Now()
	defer func() {
		loadDuration.Observe(time.Since(startTime).Seconds())
	}()

	if req.Container == nil {
		loadsTotal.WithLabelValues("no_container").Inc()
		span.SetStatus(codes.Error, "no container")
		c.logger.Warn().Str("url", req.URL).Msg("Load skipped: anchor has no listing container")
		return nil, ErrNoContainer
	}

	url := c.doc.ResolveURL(req.URL)
	span.SetAttributes(attribute.String("url", url))

	c.doc.SetLoading(true)

	body, err := c.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return nil, c.fail(span, "fetch_error", url, fmt.Errorf("fetch %s: %w", url, err))
	}

	markup, err := dom.ExtractFragment(ctx, bytes.NewReader(body), c.selector)
	if err != nil {
		return nil, c.fail(span, "fragment_missing", url, err)
	}

	if c.sanitizer != nil {
		markup = c.sanitizer.Sanitize(markup)
	}

	if err := c.doc.AppendFragment(req.Container, markup); err != nil {
		return nil, c.fail(span, "splice_error", url, err)
	}

	c.doc.ReplaceHistoryURL(url)

	if req.Anchor != nil {
		c.doc.RemoveElement(req.Anchor)
	}

	// Re-arming belongs to pages with an infinite-scroll loader.
	if c.doc.SetLoading(false) && c.then != nil {
		c.then()
	}

	result := &Result{
		URL:      url,
		Bytes:    len(body),
		Duration: time.Since(startTime),
	}

	loadsTotal.WithLabelValues("ok").Inc()
	c.logger.Info().
		Str("url", url).
		Int("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("Page loaded")

	return result, nil
}

// Dispatch runs Load in its own goroutine. The channel receives exactly
// one Outcome and is then closed.
func (c *Controller) Dispatch(ctx context.Context, req Request) <-chan Outcome {
	out := make(chan Outcome, 1)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(out)

		res, err := c.Load(ctx, req)
		out <- Outcome{Result: res, Err: err}
	}()

	return out
}

// Wait blocks until every dispatched load has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// fail clears the loader and reports err.
func (c *Controller) fail(span trace.Span, result, url string, err error) error {
	c.doc.SetLoading(false)

	loadsTotal.WithLabelValues(result).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, result)

	c.logger.Error().
		Err(err).
		Str("url", url).
		Str("result", result).
		Msg("Fetch error")

	return err
}
