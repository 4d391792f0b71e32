package loadmore

import (
	"context"

	"github.com/Sternrassler/loadmore/pkg/dom"
)

// Element is an element borrowed from the document.
type Element = dom.Element

// Document is the page the engine mutates.
type Document interface {
	// FindAnchor returns the first next-page anchor, or nil.
	FindAnchor() Element

	// FindContainer returns the item container of the listing enclosing
	// anchor, or nil.
	FindContainer(anchor Element) Element

	// ResolveURL resolves a link against the current page address.
	ResolveURL(ref string) string

	// AppendFragment appends markup after the container's children.
	AppendFragment(container Element, markup string) error

	// RemoveElement detaches el from the page.
	RemoveElement(el Element)

	// SetText replaces the text content of el.
	SetText(el Element, text string)

	// ReplaceHistoryURL makes url the current address without loading it.
	ReplaceHistoryURL(url string)

	// SetLoading toggles the loading indicator and reports whether the
	// page has one.
	SetLoading(on bool) bool

	// InfiniteScroll reports whether the page declares infinite scroll.
	InfiniteScroll() bool
}

// Fetcher retrieves a page.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) ([]byte, error)
}
