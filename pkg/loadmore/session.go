package loadmore

import (
	"context"

	"github.com/Sternrassler/loadmore/pkg/dom"
	"github.com/Sternrassler/loadmore/pkg/ledger"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session is one page lifetime of the engine. It owns the page ledger.
type Session struct {
	doc        Document
	ledger     ledger.Ledger
	controller *Controller
	trigger    *Trigger
	selectors  dom.Selectors
	logger     zerolog.Logger
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	ledger    ledger.Ledger
	logger    *zerolog.Logger
	selectors dom.Selectors
	sanitizer *bluemonday.Policy
}

// WithLedger replaces the default in-memory ledger.
func WithLedger(l ledger.Ledger) Option {
	return func(o *sessionOptions) { o.ledger = l }
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *sessionOptions) { o.logger = &l }
}

// WithSelectors sets the selectors used for fetched pages and anchor
// attributes. They should match the ones the Document queries with.
func WithSelectors(s dom.Selectors) Option {
	return func(o *sessionOptions) { o.selectors = s }
}

// WithSanitizer filters fetched fragments through p before splicing.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(o *sessionOptions) { o.sanitizer = p }
}

// NewSession wires a controller and a trigger around doc.
func NewSession(doc Document, fetcher Fetcher, opts ...Option) *Session {
	o := sessionOptions{
		selectors: dom.DefaultSelectors(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.ledger == nil {
		o.ledger = ledger.NewMemory()
	}

	logger := log.With().Str("component", "loadmore").Logger()
	if o.logger != nil {
		logger = *o.logger
	}

	controller := NewController(doc, fetcher, o.selectors.Container, logger)
	controller.SetSanitizer(o.sanitizer)

	trigger := NewTrigger(doc, o.ledger, controller, logger)
	controller.OnSuccess(trigger.Rearm)

	return &Session{
		doc:        doc,
		ledger:     o.ledger,
		controller: controller,
		trigger:    trigger,
		selectors:  o.selectors,
		logger:     logger,
	}
}

// Setup arms the trigger on the first anchor when the page declares
// infinite scroll. It reports whether the trigger is armed.
func (s *Session) Setup(ctx context.Context) bool {
	if !s.doc.InfiniteScroll() {
		s.logger.Debug().Msg("Infinite scroll not enabled")
		return false
	}

	s.trigger.Rearm()
	return s.trigger.State() == Armed
}

// Click loads the page linked by el regardless of the ledger. The anchor
// text switches to its loading text first, when it has one.
func (s *Session) Click(ctx context.Context, el Element) <-chan Outcome {
	clicksTotal.Inc()

	if text, ok := el.Attr(s.selectors.LoadingTextAttr); ok {
		s.doc.SetText(el, text)
	}

	href, _ := el.Attr("href")
	s.logger.Debug().Str("href", href).Msg("Load more clicked")

	return s.controller.Dispatch(ctx, Request{
		URL:       href,
		Container: s.doc.FindContainer(el),
		Anchor:    el,
	})
}

// Notify forwards a visibility notification to the trigger.
func (s *Session) Notify(ctx context.Context, entries []Entry) (<-chan Outcome, bool) {
	return s.trigger.Notify(ctx, entries)
}

// Trigger returns the session's trigger.
func (s *Session) Trigger() *Trigger {
	return s.trigger
}

// Ledger returns the session's ledger.
func (s *Session) Ledger() ledger.Ledger {
	return s.ledger
}

// Wait blocks until every dispatched load has finished.
func (s *Session) Wait() {
	s.controller.Wait()
}

// Reset forgets every loaded page and stops observing.
func (s *Session) Reset(ctx context.Context) error {
	s.trigger.Disarm()
	return s.ledger.Reset(ctx)
}
