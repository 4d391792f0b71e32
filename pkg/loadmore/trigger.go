package loadmore

import (
	"context"
	"sync"

	"github.com/Sternrassler/loadmore/pkg/ledger"
	"github.com/Sternrassler/loadmore/pkg/params"
	"github.com/rs/zerolog"
)

// State is the observation state of a Trigger.
type State int

const (
	// Idle means no element is observed.
	Idle State = iota

	// Armed means one anchor is observed.
	Armed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	default:
		return "unknown"
	}
}

// Entry is one visibility notification.
type Entry struct {
	// Target is the element whose visibility changed.
	Target Element

	// Ratio is the visible fraction of Target, 0 when out of view.
	Ratio float64
}

// Trigger loads the next page when the observed anchor becomes visible.
// Each (query, page) pair is loaded at most once per ledger.
type Trigger struct {
	mu         sync.Mutex
	doc        Document
	ledger     ledger.Ledger
	controller *Controller
	logger     zerolog.Logger
	observed   Element
}

// NewTrigger creates an idle trigger.
func NewTrigger(doc Document, l ledger.Ledger, controller *Controller, logger zerolog.Logger) *Trigger {
	return &Trigger{
		doc:        doc,
		ledger:     l,
		controller: controller,
		logger:     logger,
	}
}

// Arm observes el. A nil element leaves the trigger idle.
func (t *Trigger) Arm(el Element) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observed = el
	if el == nil {
		t.logger.Debug().Msg("No anchor to observe")
		return
	}
	href, _ := el.Attr("href")
	t.logger.Debug().Str("href", href).Msg("Observing anchor")
}

// Rearm observes whatever anchor the document now shows.
func (t *Trigger) Rearm() {
	t.Arm(t.doc.FindAnchor())
}

// Disarm stops observing.
func (t *Trigger) Disarm() {
	t.Arm(nil)
}

// State reports whether an anchor is observed.
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.observed == nil {
		return Idle
	}
	return Armed
}

// Observed returns the observed anchor, or nil when idle.
func (t *Trigger) Observed() Element {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.observed
}

// Notify handles a visibility notification. Only the first entry counts,
// and only when it names the observed anchor. A load is dispatched when
// the target is visible, its link names a (query, page) pair and that pair
// is not yet in the ledger; the pair is recorded before dispatch. The returned channel is nil when nothing was
// dispatched.
func (t *Trigger) Notify(ctx context.Context, entries []Entry) (<-chan Outcome, bool) {
	t.mu.Lock()

	if t.observed == nil {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("idle").Inc()
		return nil, false
	}

	// NaN ratios fail the comparison and count as not visible.
	if len(entries) == 0 || !(entries[0].Ratio > 0) || entries[0].Target == nil {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("not_visible").Inc()
		return nil, false
	}

	target := entries[0].Target
	if target != t.observed {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("not_observed").Inc()
		return nil, false
	}
	href, _ := target.Attr("href")

	p, ok := params.Extract(href)
	if !ok {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("no_params").Inc()
		t.logger.Debug().Str("href", href).Msg("Anchor link carries no query/page")
		return nil, false
	}

	loaded, err := t.ledger.IsLoaded(ctx, p.Query, p.Page)
	if err != nil {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("ledger_error").Inc()
		t.logger.Error().Err(err).Str("params", p.String()).Msg("Ledger check failed")
		return nil, false
	}
	if loaded {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("already_loaded").Inc()
		return nil, false
	}

	if err := t.ledger.Record(ctx, p.Query, p.Page); err != nil {
		t.mu.Unlock()
		notificationsTotal.WithLabelValues("ledger_error").Inc()
		t.logger.Error().Err(err).Str("params", p.String()).Msg("Ledger record failed")
		return nil, false
	}
	t.mu.Unlock()

	notificationsTotal.WithLabelValues("dispatched").Inc()
	t.logger.Debug().
		Int("query", p.Query).
		Int("page", p.Page).
		Msg("Anchor visible, loading page")

	return t.controller.Dispatch(ctx, Request{
		URL:       href,
		Container: t.doc.FindContainer(target),
		Anchor:    target,
	}), true
}
