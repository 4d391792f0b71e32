package dom

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrForeignElement is returned for elements that are not (or no
	// longer) part of the document.
	ErrForeignElement = errors.New("element not in document")
)

// Document is a mutable HTML page.
type Document struct {
	mu      sync.Mutex
	doc     *goquery.Document
	sel     Selectors
	url     *url.URL
	history []string
}

// Parse reads an HTML page. pageURL is the address the page was loaded
// from; relative links resolve against it. Empty selector fields fall back
// to DefaultSelectors.
func Parse(r io.Reader, pageURL string, sel Selectors) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var base *url.URL
	if pageURL != "" {
		base, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parse page url: %w", err)
		}
	}

	return &Document{
		doc: doc,
		sel: sel.withDefaults(),
		url: base,
	}, nil
}

// Selectors returns the selectors the document queries with.
func (d *Document) Selectors() Selectors {
	return d.sel
}

// FindAnchor returns the first next-page anchor, or nil.
func (d *Document) FindAnchor() Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.doc.Find(d.sel.Anchor).First()
	if s.Length() == 0 {
		return nil
	}
	return Node{n: s.Get(0)}
}

// Anchors returns every next-page anchor in document order.
func (d *Document) Anchors() []Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.doc.Find(d.sel.Anchor)
	anchors := make([]Element, 0, s.Length())
	for _, n := range s.Nodes {
		anchors = append(anchors, Node{n: n})
	}
	return anchors
}

// FindContainer walks up from anchor to its listing and returns the
// listing's first item container, or nil.
func (d *Document) FindContainer(anchor Element) Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.selection(anchor)
	if err != nil {
		return nil
	}

	c := s.Closest(d.sel.Listing).Find(d.sel.Container).First()
	if c.Length() == 0 {
		return nil
	}
	return Node{n: c.Get(0)}
}

// ResolveURL resolves ref against the current document URL.
func (d *Document) ResolveURL(ref string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.url == nil {
		return ref
	}
	u, err := d.url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// AppendFragment parses markup and appends it after the container's
// existing children.
func (d *Document) AppendFragment(container Element, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.selection(container)
	if err != nil {
		return fmt.Errorf("append fragment: %w", err)
	}
	s.AppendHtml(markup)
	return nil
}

// RemoveElement detaches el from the document. Unknown elements are ignored.
func (d *Document) RemoveElement(el Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, err := d.selection(el); err == nil {
		s.Remove()
	}
}

// SetText replaces the text content of el.
func (d *Document) SetText(el Element, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, err := d.selection(el); err == nil {
		s.SetText(text)
	}
}

// ReplaceHistoryURL pushes rawURL as the current address without loading it.
func (d *Document) ReplaceHistoryURL(rawURL string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = append(d.history, rawURL)
	if d.url == nil {
		if u, err := url.Parse(rawURL); err == nil {
			d.url = u
		}
		return
	}
	if u, err := d.url.Parse(rawURL); err == nil {
		d.url = u
	}
}

// SetLoading toggles the loading class on the first loader element and
// reports whether a loader exists.
func (d *Document) SetLoading(on bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	loader := d.doc.Find(d.sel.Loader).First()
	if loader.Length() == 0 {
		return false
	}
	if on {
		loader.AddClass(d.sel.LoadingClass)
	} else {
		loader.RemoveClass(d.sel.LoadingClass)
	}
	return true
}

// Loading reports whether the loader currently carries the loading class.
func (d *Document) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.doc.Find(d.sel.Loader).First().HasClass(d.sel.LoadingClass)
}

// InfiniteScroll reports whether the page declares infinite scroll.
func (d *Document) InfiniteScroll() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.doc.Find(d.sel.Loader).Length() > 0
}

// URL returns the current document address.
func (d *Document) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.url == nil {
		return ""
	}
	return d.url.String()
}

// History returns the URLs pushed with ReplaceHistoryURL, oldest first.
func (d *Document) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.history)
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.doc.Html()
}

// selection maps el back onto the live tree. Caller holds d.mu.
func (d *Document) selection(el Element) (*goquery.Selection, error) {
	n, ok := el.(Node)
	if !ok || n.n == nil {
		return nil, ErrForeignElement
	}
	s := d.doc.FindNodes(n.n)
	if s.Length() == 0 {
		return nil, ErrForeignElement
	}
	return s, nil
}
