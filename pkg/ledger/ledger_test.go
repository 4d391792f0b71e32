package ledger

import (
	"context"
	"sync"
	"testing"
)

func TestMemory_IsLoaded_Unknown(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	loaded, err := l.IsLoaded(ctx, 42, 1)
	if err != nil {
		t.Fatalf("IsLoaded() error = %v", err)
	}
	if loaded {
		t.Error("IsLoaded() = true for a query that was never recorded")
	}
}

func TestMemory_RecordThenIsLoaded(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	if err := l.Record(ctx, 3, 2); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	loaded, _ := l.IsLoaded(ctx, 3, 2)
	if !loaded {
		t.Error("IsLoaded(3, 2) = false after Record(3, 2)")
	}

	// Other pages and queries stay unloaded.
	if loaded, _ := l.IsLoaded(ctx, 3, 3); loaded {
		t.Error("IsLoaded(3, 3) = true, want false")
	}
	if loaded, _ := l.IsLoaded(ctx, 4, 2); loaded {
		t.Error("IsLoaded(4, 2) = true, want false")
	}

	// Unrelated records do not affect earlier ones.
	_ = l.Record(ctx, 4, 2)
	_ = l.Record(ctx, 3, 5)
	if loaded, _ := l.IsLoaded(ctx, 3, 2); !loaded {
		t.Error("IsLoaded(3, 2) = false after unrelated records")
	}
}

func TestMemory_RecordDoesNotDeduplicate(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	_ = l.Record(ctx, 1, 2)
	_ = l.Record(ctx, 1, 2)

	pages := l.Pages(1)
	if len(pages) != 2 {
		t.Fatalf("Pages(1) = %v, want two entries", pages)
	}
	if loaded, _ := l.IsLoaded(ctx, 1, 2); !loaded {
		t.Error("IsLoaded(1, 2) = false after duplicate records")
	}
}

func TestMemory_Reset(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	_ = l.Record(ctx, 1, 2)
	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if loaded, _ := l.IsLoaded(ctx, 1, 2); loaded {
		t.Error("IsLoaded(1, 2) = true after Reset")
	}
	if pages := l.Pages(1); len(pages) != 0 {
		t.Errorf("Pages(1) = %v after Reset, want empty", pages)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for q := 1; q <= 8; q++ {
		wg.Add(1)
		go func(query int) {
			defer wg.Done()
			for p := 1; p <= 50; p++ {
				_ = l.Record(ctx, query, p)
				_, _ = l.IsLoaded(ctx, query, p)
			}
		}(q)
	}
	wg.Wait()

	for q := 1; q <= 8; q++ {
		if got := len(l.Pages(q)); got != 50 {
			t.Errorf("Pages(%d) has %d entries, want 50", q, got)
		}
	}
}

func TestMemory_PagesReturnsCopy(t *testing.T) {
	l := NewMemory()
	_ = l.Record(context.Background(), 1, 2)

	pages := l.Pages(1)
	pages[0] = 99

	if loaded, _ := l.IsLoaded(context.Background(), 1, 2); !loaded {
		t.Error("mutating Pages() result changed the ledger")
	}
}
