package pagination

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/loadmore/pkg/dom"
	"github.com/Sternrassler/loadmore/pkg/ledger"
	"github.com/Sternrassler/loadmore/pkg/loadmore"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	expansionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmore_expansions_total",
		Help: "Listing expansions by result",
	}, []string{"result"}) // "ok", "error"

	expandedPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loadmore_expanded_pages",
		Help:    "Pages appended per listing expansion",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)

// Config holds scroller configuration.
type Config struct {
	// MaxPages caps the pages appended to one listing (0 = no cap).
	MaxPages int

	// MaxConcurrency is the number of listings expanded in parallel.
	MaxConcurrency int

	// Timeout bounds one whole expansion.
	Timeout time.Duration

	// BufferSize for the batch channels (default: number of URLs).
	BufferSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		MaxPages:       50,
		MaxConcurrency: 4,
		Timeout:        2 * time.Minute,
	}
}

// StopReason tells why an expansion ended.
type StopReason string

const (
	// StopExhausted means no next-page anchor is left.
	StopExhausted StopReason = "exhausted"

	// StopMaxPages means the page budget was spent.
	StopMaxPages StopReason = "max_pages"

	// StopGated means the armed anchor did not dispatch a load (its link
	// names no page, or the page is already loaded).
	StopGated StopReason = "gated"

	// StopError means a load failed.
	StopError StopReason = "error"
)

// Stats describes one expansion.
type Stats struct {
	URL      string
	Pages    int
	Scrolled bool // false when the click path was used
	Stop     StopReason
	Duration time.Duration
}

// Scroller expands one listing page at a time.
type Scroller struct {
	fetcher   loadmore.Fetcher
	config    Config
	selectors dom.Selectors
	sanitizer *bluemonday.Policy
	ledgerFor func(pageURL string) ledger.Ledger
	logger    zerolog.Logger
}

// Option configures a Scroller.
type Option func(*Scroller)

// WithSelectors sets the listing selectors.
func WithSelectors(sel dom.Selectors) Option {
	return func(s *Scroller) { s.selectors = sel }
}

// WithSanitizer filters appended fragments through p.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(s *Scroller) { s.sanitizer = p }
}

// WithLedgerFactory supplies the page ledger of each expansion. By default
// every expansion gets a fresh in-memory ledger.
func WithLedgerFactory(fn func(pageURL string) ledger.Ledger) Option {
	return func(s *Scroller) { s.ledgerFor = fn }
}

// WithLogger sets the scroller logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scroller) { s.logger = l }
}

// NewScroller creates a scroller.
func NewScroller(fetcher loadmore.Fetcher, config Config, opts ...Option) *Scroller {
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	s := &Scroller{
		fetcher:   fetcher,
		config:    config,
		selectors: dom.DefaultSelectors(),
		ledgerFor: func(string) ledger.Ledger { return ledger.NewMemory() },
		logger:    log.With().Str("component", "scroller").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Expand loads pageURL and appends every following page of its listing.
// On a failed load the partially expanded document is returned with the
// error.
func (s *Scroller) Expand(ctx context.Context, pageURL string) (*dom.Document, Stats, error) {
	start := time.Now()
	stats := Stats{URL: pageURL}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	body, err := s.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		expansionsTotal.WithLabelValues("error").Inc()
		return nil, stats, fmt.Errorf("fetch start page: %w", err)
	}

	doc, err := dom.Parse(bytes.NewReader(body), pageURL, s.selectors)
	if err != nil {
		expansionsTotal.WithLabelValues("error").Inc()
		return nil, stats, err
	}

	session := loadmore.NewSession(doc, s.fetcher,
		loadmore.WithSelectors(doc.Selectors()),
		loadmore.WithLedger(s.ledgerFor(pageURL)),
		loadmore.WithSanitizer(s.sanitizer),
		loadmore.WithLogger(s.logger),
	)
	defer session.Wait()

	stats.Scrolled = session.Setup(ctx) || doc.InfiniteScroll()

	s.logger.Info().
		Str("url", pageURL).
		Bool("scroll", stats.Scrolled).
		Msg("Starting listing expansion")

	for {
		if s.config.MaxPages > 0 && stats.Pages >= s.config.MaxPages {
			stats.Stop = StopMaxPages
			break
		}

		out, stop := s.next(ctx, session, doc, stats.Scrolled)
		if out == nil {
			stats.Stop = stop
			break
		}

		outcome := <-out
		if outcome.Err != nil {
			stats.Stop = StopError
			stats.Duration = time.Since(start)
			expansionsTotal.WithLabelValues("error").Inc()
			expandedPages.Observe(float64(stats.Pages))

			s.logger.Warn().
				Err(outcome.Err).
				Str("url", pageURL).
				Int("pages", stats.Pages).
				Msg("Expansion stopped - returning partial document")
			return doc, stats, fmt.Errorf("expand %s (partial: %d pages): %w", pageURL, stats.Pages, outcome.Err)
		}
		stats.Pages++

		if stats.Pages%10 == 0 {
			s.logger.Info().
				Str("url", pageURL).
				Int("pages", stats.Pages).
				Msg("Expansion progress")
		}
	}

	stats.Duration = time.Since(start)
	expansionsTotal.WithLabelValues("ok").Inc()
	expandedPages.Observe(float64(stats.Pages))

	s.logger.Info().
		Str("url", pageURL).
		Int("pages", stats.Pages).
		Str("stop", string(stats.Stop)).
		Dur("duration", stats.Duration).
		Msg("Expansion complete")

	return doc, stats, nil
}

// next dispatches the following load, or reports why there is none.
func (s *Scroller) next(ctx context.Context, session *loadmore.Session, doc *dom.Document, scroll bool) (<-chan loadmore.Outcome, StopReason) {
	if !scroll {
		anchor := doc.FindAnchor()
		if anchor == nil {
			return nil, StopExhausted
		}
		return session.Click(ctx, anchor), ""
	}

	anchor := session.Trigger().Observed()
	if anchor == nil {
		return nil, StopExhausted
	}

	out, ok := session.Notify(ctx, []loadmore.Entry{{Target: anchor, Ratio: 1}})
	if !ok {
		return nil, StopGated
	}
	return out, ""
}
