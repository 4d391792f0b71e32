// Package ledger records which pages of which listings have already been
// loaded during one page session.
//
// The ledger is the dedup gate in front of automatic loads: a visibility
// notification for a (query, page) pair only dispatches a fetch when the
// pair is not yet recorded, and the pair is recorded before the fetch
// starts. Insertion itself does not deduplicate; callers check first.
//
// # Backends
//
//   - [Memory]: process-local, the default for a single document.
//   - [Redis]: session-scoped, for services where one page session spans
//     several stateless requests. Entries expire with the session TTL.
//
// # Basic Usage
//
//	l := ledger.NewMemory()
//
//	loaded, _ := l.IsLoaded(ctx, 3, 2)
//	if !loaded {
//		_ = l.Record(ctx, 3, 2)
//		// dispatch the fetch
//	}
//
// # Redis Keys
//
// One list per (session, query):
//
//	loadmore:ledger:<session>:query=<N>
//
// # Metrics
//
//   - loadmore_ledger_records_total{backend} - Pages recorded
//   - loadmore_ledger_hits_total{backend} - IsLoaded checks that found the page
//   - loadmore_ledger_errors_total{operation} - Backend errors
package ledger
