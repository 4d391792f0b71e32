package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/loadmore/internal/testutil"
	"github.com/Sternrassler/loadmore/pkg/client"
	"github.com/Sternrassler/loadmore/pkg/logging"
	"github.com/Sternrassler/loadmore/pkg/pagination"
	"github.com/redis/go-redis/v9"
)

func newTestServer(t *testing.T, rdb *redis.Client) http.Handler {
	t.Helper()

	c, err := client.New(client.DefaultConfig("loadmore-test/1.0"))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	scroller := pagination.NewScroller(c, pagination.DefaultConfig())
	return newServer(scroller, rdb, logging.NewLogger("server")).routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, newTestServer(t, nil), "/health")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %q", w.Body.String())
	}
}

func TestReadyEndpoint_InMemory(t *testing.T) {
	w := get(t, newTestServer(t, nil), "/ready")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpoint_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	w := get(t, newTestServer(t, rdb), "/ready")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	w := get(t, newTestServer(t, nil), "/metrics")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected default Go collectors in metrics output")
	}
}

func TestExpandEndpoint(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()
	site.AddListing("/blog/", testutil.Listing{Query: 3, Pages: 3, PerPage: 2, InfiniteScroll: true})

	h := newTestServer(t, nil)
	target := "/expand?url=" + url.QueryEscape(site.URL()+"/blog/")

	t.Run("html", func(t *testing.T) {
		w := get(t, h, target)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("X-Loadmore-Pages"); got != "2" {
			t.Errorf("X-Loadmore-Pages = %q, want 2", got)
		}
		if got := strings.Count(w.Body.String(), `class="post"`); got != 6 {
			t.Errorf("post count = %d, want 6", got)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		w := get(t, h, target+"&format=markdown")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), testutil.PostTitle(3, 3, 2)) {
			t.Errorf("markdown output misses last post:\n%s", w.Body.String())
		}
		if strings.Contains(w.Body.String(), "<article") {
			t.Error("markdown output still contains HTML")
		}
	})
}

func TestExpandEndpoint_PartialListing(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()
	site.AddListing("/blog/", testutil.Listing{Query: 3, Pages: 3, InfiniteScroll: true, FailPage: 2})

	w := get(t, newTestServer(t, nil), "/expand?url="+url.QueryEscape(site.URL()+"/blog/"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Loadmore-Error") == "" {
		t.Error("Expected X-Loadmore-Error header on partial listing")
	}
	if got := w.Header().Get("X-Loadmore-Stop"); got != "error" {
		t.Errorf("X-Loadmore-Stop = %q, want error", got)
	}
}

func TestExpandEndpoint_BadRequests(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()

	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing url", "/expand", http.StatusBadRequest},
		{"relative url", "/expand?url=%2Fblog%2F", http.StatusBadRequest},
		{"unknown format", "/expand?format=pdf&url=" + url.QueryEscape(site.URL()+"/blog/"), http.StatusBadRequest},
		{"start page missing", "/expand?url=" + url.QueryEscape(site.URL()+"/missing/"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(t, h, tt.target); w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// A config path that does not exist keeps the user's file out of tests.
	args = append(args, "--config", filepath.Join(t.TempDir(), "none.toml"), "--log-level", "disabled")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)

	err := root.Execute()
	return out.String(), err
}

func TestExpandCommand(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()
	site.AddListing("/a/", testutil.Listing{Query: 1, Pages: 2, InfiniteScroll: true})
	site.AddListing("/b/", testutil.Listing{Query: 2, Pages: 3})

	out, err := runRoot(t, "expand", site.URL()+"/a/", site.URL()+"/b/")
	if err != nil {
		t.Fatalf("expand error = %v", err)
	}

	first := strings.Index(out, testutil.PostTitle(1, 2, 1))
	second := strings.Index(out, testutil.PostTitle(2, 3, 1))
	if first < 0 || second < 0 {
		t.Fatalf("output misses expanded posts:\n%s", out)
	}
	if first > second {
		t.Error("documents not written in argument order")
	}
}

func TestExpandCommand_MarkdownToFile(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()
	site.AddListing("/blog/", testutil.Listing{Query: 3, Pages: 4, InfiniteScroll: true})

	path := filepath.Join(t.TempDir(), "blog.md")
	_, err := runRoot(t, "expand", site.URL()+"/blog/", "--format", "markdown", "--out", path, "--max-pages", "1")
	if err != nil {
		t.Fatalf("expand error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), testutil.PostTitle(3, 2, 1)) {
		t.Errorf("missing page 2 post:\n%s", b)
	}
	if strings.Contains(string(b), testutil.PostTitle(3, 3, 1)) {
		t.Error("page 3 loaded despite --max-pages 1")
	}
}

func TestExpandCommand_Errors(t *testing.T) {
	if _, err := runRoot(t, "expand"); err == nil {
		t.Error("expected error without URLs")
	}
	if _, err := runRoot(t, "expand", "http://127.0.0.1:1/", "--format", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := runRoot(t, "expand", "http://127.0.0.1:1/", "--concurrency", "0"); err == nil {
		t.Error("expected validation error")
	}
}
