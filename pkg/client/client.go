// Package client fetches listing pages over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page fetches.
var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmore_fetch_requests_total",
		Help: "Total page fetches by HTTP status",
	}, []string{"status"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loadmore_fetch_duration_seconds",
		Help:    "Page fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmore_fetch_errors_total",
		Help: "Total page fetch errors by class",
	}, []string{"class"})

	fetchBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadmore_fetch_bytes_total",
		Help: "Total response bytes read from listing pages",
	})
)

// Client fetches HTML pages.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request.
	UserAgent string

	// Timeout bounds a whole request including the body read.
	Timeout time.Duration

	// MaxBodyBytes caps the response size (0 disables the cap).
	MaxBodyBytes int64
}

// DefaultConfig returns a default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:    userAgent,
		Timeout:      30 * time.Second,
		MaxBodyBytes: 10 << 20, // 10MB
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("max_body_bytes must be >= 0 (got %d)", cfg.MaxBodyBytes)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "fetch-client").Logger(),
	}, nil
}

// FetchHTML GETs rawURL and returns the response body.
// Any status outside 2xx is returned as an *HTTPError.
func (c *Client) FetchHTML(ctx context.Context, rawURL string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Listing endpoints are asked for HTML explicitly.
	req.Header.Set("Content-Type", "text/html")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Str("url", rawURL).
		Msg("Fetching page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fetchErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		fetchRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		return nil, &HTTPError{
			URL:        rawURL,
			ErrorClass: ErrorClassNetwork,
			Message:    "transport error",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	fetchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		fetchErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Page request error")

		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		return nil, &HTTPError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		errClass := ErrorClassNetwork
		if errors.Is(err, ErrBodyTooLarge) {
			errClass = ErrorClassUnexpected
		}
		fetchErrorsTotal.WithLabelValues(string(errClass)).Inc()
		return nil, &HTTPError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    "read body",
			Err:        err,
		}
	}

	fetchBytesTotal.Add(float64(len(body)))
	c.logger.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched page")

	return body, nil
}

// readBody reads r honoring MaxBodyBytes.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.config.MaxBodyBytes == 0 {
		return io.ReadAll(r)
	}

	body, err := io.ReadAll(io.LimitReader(r, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.config.MaxBodyBytes)
	}
	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}
