package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/page"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second
)

// Fetcher retrieves and parses one page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*page.Element, error)
}

// NetworkError reports a request that produced no HTTP response
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError reports a non-2xx response
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

// Options configures a Client
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retries   int           // extra attempts after a network error or 5xx response
	RetryWait time.Duration // initial wait between attempts
}

// Client fetches pages over HTTP
type Client struct {
	http *resty.Client
}

// New creates a Client. Zero-valued options fall back to the defaults.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
		client.SetRetryMaxWaitTime(8 * opts.RetryWait)
	}
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
	})

	return &Client{http: client}
}

// Fetch downloads url and parses the body as HTML
func (c *Client) Fetch(ctx context.Context, url string) (*page.Element, error) {
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(url)
	logger.RecordTiming("fetch", time.Since(start))
	if err != nil {
		logger.IncrCounter("fetch.network_errors")
		return nil, &NetworkError{URL: url, Err: err}
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		logger.IncrCounter("fetch.status_errors")
		return nil, &HTTPStatusError{URL: url, StatusCode: code}
	}

	// The site serves UTF-8 but older pages may declare a legacy Korean charset
	body, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	doc, err := page.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	logger.IncrCounter("fetch.pages")
	logger.Debug("Fetched page", logger.Fields{"url": url, "bytes": len(resp.Body())})
	return doc, nil
}
