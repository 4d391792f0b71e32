package ledger

import (
	"context"
	"slices"
	"sync"
)

// Ledger tracks loaded pages per query.
type Ledger interface {
	// IsLoaded reports whether page has been recorded for query.
	// An unknown query is not an error.
	IsLoaded(ctx context.Context, query, page int) (bool, error)

	// Record appends page to the pages of query. It does not deduplicate.
	Record(ctx context.Context, query, page int) error

	// Reset forgets every recorded page.
	Reset(ctx context.Context) error
}

// Memory is an in-process Ledger. The zero value is not usable; use NewMemory.
type Memory struct {
	mu    sync.Mutex
	pages map[int][]int
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[int][]int),
	}
}

// IsLoaded implements Ledger. It never returns an error.
func (m *Memory) IsLoaded(_ context.Context, query, page int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.pages[query], page) {
		ledgerHits.WithLabelValues("memory").Inc()
		return true, nil
	}
	return false, nil
}

// Record implements Ledger. It never returns an error.
func (m *Memory) Record(_ context.Context, query, page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pages[query] = append(m.pages[query], page)
	ledgerRecords.WithLabelValues("memory").Inc()
	return nil
}

// Reset implements Ledger.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.pages)
	return nil
}

// Pages returns a copy of the pages recorded for query, in record order.
func (m *Memory) Pages(query int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.pages[query])
}
