package loadmore

import (
	"context"
	"errors"
	"sync"
)

// fakeElement is an anchor or container of fakeDocument.
type fakeElement struct {
	attrs   map[string]string
	text    string
	removed bool
}

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func newAnchor(href string) *fakeElement {
	return &fakeElement{attrs: map[string]string{"href": href}}
}

// fakeDocument records every mutation the engine makes.
type fakeDocument struct {
	mu         sync.Mutex
	anchors    []*fakeElement
	containers map[*fakeElement]*fakeElement
	fragments  map[*fakeElement][]string
	history    []string
	hasLoader  bool
	loading    bool
	loaderOps  []bool
	appendErr  error
}

func newFakeDocument(loader bool) *fakeDocument {
	return &fakeDocument{
		containers: make(map[*fakeElement]*fakeElement),
		fragments:  make(map[*fakeElement][]string),
		hasLoader:  loader,
	}
}

// addListing adds an anchor with its own container.
func (d *fakeDocument) addListing(href string) (anchor, container *fakeElement) {
	d.mu.Lock()
	defer d.mu.Unlock()

	anchor = newAnchor(href)
	container = &fakeElement{attrs: map[string]string{}}
	d.anchors = append(d.anchors, anchor)
	d.containers[anchor] = container
	return anchor, container
}

func (d *fakeDocument) FindAnchor() Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.anchors {
		if !a.removed {
			return a
		}
	}
	return nil
}

func (d *fakeDocument) FindContainer(anchor Element) Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := anchor.(*fakeElement)
	if !ok {
		return nil
	}
	if c, ok := d.containers[a]; ok {
		return c
	}
	return nil
}

func (d *fakeDocument) ResolveURL(ref string) string {
	return ref
}

func (d *fakeDocument) AppendFragment(container Element, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.appendErr != nil {
		return d.appendErr
	}
	c := container.(*fakeElement)
	d.fragments[c] = append(d.fragments[c], markup)
	return nil
}

func (d *fakeDocument) RemoveElement(el Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el.(*fakeElement).removed = true
}

func (d *fakeDocument) SetText(el Element, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el.(*fakeElement).text = text
}

func (d *fakeDocument) ReplaceHistoryURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = append(d.history, url)
}

func (d *fakeDocument) SetLoading(on bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasLoader {
		return false
	}
	d.loading = on
	d.loaderOps = append(d.loaderOps, on)
	return true
}

func (d *fakeDocument) InfiniteScroll() bool {
	return d.hasLoader
}

func (d *fakeDocument) fragmentsOf(c *fakeElement) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.fragments[c]...)
}

func (d *fakeDocument) historyURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.history...)
}

func (d *fakeDocument) isLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.loading
}

var errFakeNotFound = errors.New("404 Not Found")

// fakeFetcher serves canned bodies and counts requests per URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int

	// gate, when set, holds every fetch until it is closed.
	gate chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) FetchHTML(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.pages[url]
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, errFakeNotFound
	}
	return []byte(body), nil
}

func (f *fakeFetcher) callsTo(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[url]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}
