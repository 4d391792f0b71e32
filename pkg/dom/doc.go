// Package dom provides an in-memory HTML document for the load-more engine.
//
// A Document wraps a goquery document and exposes the small set of
// mutations a "load more" cycle needs: find the next-page anchor, find the
// listing's item container, append a fragment, remove the anchor, push the
// new URL into history and toggle the loading indicator. All mutations are
// serialized, so concurrent loads see the same one-at-a-time ordering a
// browser event loop gives them.
//
// # Basic Usage
//
//	doc, err := dom.Parse(resp.Body, "https://example.com/blog/", dom.DefaultSelectors())
//	if err != nil {
//		return err
//	}
//
//	anchor := doc.FindAnchor()
//	container := doc.FindContainer(anchor)
//
// # Fragments
//
// ExtractFragment parses a fetched page and returns the inner markup of the
// first element matching the container selector:
//
//	markup, err := dom.ExtractFragment(ctx, bytes.NewReader(body), ".wp-block-post-template")
//	if errors.Is(err, dom.ErrFragmentNotFound) {
//		// response carried no post list
//	}
package dom
