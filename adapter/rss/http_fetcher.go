package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultUserAgent = "newshub/1.0 (+feed ingestion)"

	// maxFeedSize caps how much of a response body is read, so a
	// misbehaving origin cannot exhaust memory.
	maxFeedSize = 10 * 1024 * 1024
)

var (
	// ErrMissingURL means the source is registered without a feed URL.
	ErrMissingURL = errors.New("rss: source has no feed url")
	// ErrEmptyBody means the origin answered 2xx with a zero-length body.
	ErrEmptyBody = errors.New("rss: empty response body")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rss: unexpected status %d", e.Code)
}

// HTTPFetcher retrieves raw feed bytes over HTTP with an identifying
// User-Agent and a per-request timeout.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, ErrMissingURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	return body, nil
}
