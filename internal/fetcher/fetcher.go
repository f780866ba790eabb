package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
)

// FailureKind classifies why a page could not be fetched.
type FailureKind string

const (
	FailureHTTPStatus FailureKind = "http_status"
	FailureConnection FailureKind = "connection"
	FailureTimeout    FailureKind = "timeout"
	FailureRequest    FailureKind = "request"
)

// StatusError is returned for responses outside the 2xx/3xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// HTTPFetcher retrieves catalog pages with a single GET per call.
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

func New(logger *slog.Logger, opts Options) *HTTPFetcher {
	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetTimeout(opts.Timeout)

	return &HTTPFetcher{
		client: client,
		logger: logger.With("component", "fetcher"),
	}
}

// Fetch returns the page body, or nil when the page could not be retrieved.
// Failures are logged, never returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) []byte {
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.Warn("failed to fetch page",
			"url", url,
			"kind", Classify(err),
			"error", err)
		return nil
	}
	return body
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// Classify maps a fetch error onto a FailureKind.
func Classify(err error) FailureKind {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return FailureHTTPStatus
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureConnection
	}

	return FailureRequest
}
