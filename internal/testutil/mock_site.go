// Package testutil provides testing utilities for the load-more engine.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/loadmore/pkg/params"
)

// MockResponse defines the behavior for a fixed mock response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Listing describes a paginated query listing served by MockSite.
type Listing struct {
	Query          int
	Pages          int
	PerPage        int
	InfiniteScroll bool

	// FailPage answers 500 for this page (0 = never).
	FailPage int
}

// MockSite is a configurable site serving paginated listings for testing.
type MockSite struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	listings map[string]Listing
	hits     map[string]int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockSite creates a new mock site.
func NewMockSite() *MockSite {
	mock := &MockSite{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		listings: make(map[string]Listing),
		hits:     make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		listing, isListing := mock.listings[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}
		if isListing {
			mock.serveListing(w, r, listing)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSite) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSite) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSite) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.hits = make(map[string]int)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSite) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockSite) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// AddListing serves l under path. Page 1 is path itself; later pages are
// linked as path?query-Q&page=N.
func (m *MockSite) AddListing(path string, l Listing) {
	if l.Pages < 1 {
		l.Pages = 1
	}
	if l.PerPage < 1 {
		l.PerPage = 3
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[path] = l
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSite) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// PageHits returns how often page of the listing at path was served.
func (m *MockSite) PageHits(path string, page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits[hitKey(path, page)]
}

func (m *MockSite) serveListing(w http.ResponseWriter, r *http.Request, l Listing) {
	page := 1
	if p, ok := params.Extract(r.URL.RawQuery); ok && p.Query == l.Query {
		page = p.Page
	}

	m.mu.Lock()
	m.hits[hitKey(r.URL.Path, page)]++
	m.mu.Unlock()

	if page < 1 || page > l.Pages {
		http.NotFound(w, r)
		return
	}
	if page == l.FailPage {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RenderListingPage(r.URL.Path, l, page)))
}

// RenderListingPage renders one page of l. The next-page button sits
// inside the post template, so every loaded fragment carries the anchor
// for the page after it.
func RenderListingPage(path string, l Listing, page int) string {
	var b strings.Builder

	b.WriteString("<!doctype html>\n<html><head><title>Listing</title></head><body>\n<main>\n")
	b.WriteString(`<div class="wp-block-query">` + "\n")
	b.WriteString(`<div class="wp-block-post-template">` + "\n")
	for i := 1; i <= l.PerPage; i++ {
		fmt.Fprintf(&b, `<article class="post">%s</article>`+"\n", PostTitle(l.Query, page, i))
	}
	if page < l.Pages {
		fmt.Fprintf(&b, `<a class="wp-load-more__button" href="%s?query-%d&amp;page=%d" data-loading-text="Loading...">Load more</a>`+"\n",
			path, l.Query, page+1)
	}
	b.WriteString("</div>\n")
	if l.InfiniteScroll {
		b.WriteString(`<span class="wp-load-more__infinite-scroll"></span>` + "\n")
	}
	b.WriteString("</div>\n</main>\n</body></html>\n")

	return b.String()
}

// PostTitle returns the title of the i-th post on page of query.
func PostTitle(query, page, i int) string {
	return fmt.Sprintf("Post %d-%d-%d", query, page, i)
}

func hitKey(path string, page int) string {
	return fmt.Sprintf("%s#%d", path, page)
}
