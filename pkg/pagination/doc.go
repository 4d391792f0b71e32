// Package pagination expands paginated listings headlessly.
//
// A Scroller loads a listing page and keeps the load-more engine busy the
// way a reader scrolling to the bottom would: every time the trigger is
// armed, the observed anchor is reported fully visible, until no anchor is
// left, the page budget is spent or a load fails. Pages that do not declare
// infinite scroll are expanded through the click path instead.
//
// Example usage:
//
//	scroller := pagination.NewScroller(fetchClient, pagination.DefaultConfig())
//	doc, stats, err := scroller.Expand(ctx, "https://example.com/blog/")
//
// A BatchScroller expands many start URLs with a worker pool:
//
//	batch := pagination.NewBatchScroller(scroller, pagination.DefaultConfig())
//	results, err := batch.ExpandAll(ctx, urls)
//
// Failed expansions keep the pages loaded so far; ExpandAll returns
// partial results together with the first error.
package pagination
