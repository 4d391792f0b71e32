// Package loadmore implements the "load more" / infinite scroll engine for
// paginated post listings.
//
// A listing exposes a next-page anchor. Clicking it, or the anchor
// scrolling into view when the page declares infinite scroll, fetches the
// linked page, extracts its post list and appends the items to the
// listing's container instead of navigating.
//
// The engine talks to the page through the [Document] port and to the
// network through the [Fetcher] port, so the same logic runs against the
// goquery adapter in package dom or against any other document model.
//
// # Components
//
//   - [Controller]: fetch-and-splice of one page.
//   - [Trigger]: visibility-driven loads gated by the page ledger.
//   - [Session]: one page lifetime; owns the ledger, wires click and
//     visibility paths to the controller.
//
// # Basic Usage
//
//	doc, _ := dom.Parse(body, pageURL, dom.DefaultSelectors())
//	s := loadmore.NewSession(doc, fetchClient)
//	s.Setup(ctx)
//
//	// the anchor became visible
//	s.Notify(ctx, []loadmore.Entry{{Target: s.Trigger().Observed(), Ratio: 1}})
//	s.Wait()
//
// # Failure Handling
//
// A failed fetch or a response without a post list is logged and returned
// as the load's Outcome. The loading indicator is cleared, the anchor stays
// in place and nothing is retried.
package loadmore
