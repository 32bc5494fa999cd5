// Package source supplies raw comprehensive rules documents to a rules.Cache
// from the web or from the local filesystem.
package source

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxRedirects bounds redirect chains followed by TimeoutHTTPClient.
const maxRedirects = 10

// HTTPClient is an interface matching the Do method of *http.Client.
// This allows injection of mock clients for testing and custom transports.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitedHTTPClient wraps an HTTPClient with a token bucket that allows
// one request per interval.
type RateLimitedHTTPClient struct {
	underlying HTTPClient
	limiter    *rate.Limiter
}

// NewRateLimitedHTTPClient creates a rate-limited HTTP client that enforces
// the given minimum interval between requests. A non-positive interval
// disables limiting.
func NewRateLimitedHTTPClient(underlying HTTPClient, requestInterval time.Duration) *RateLimitedHTTPClient {
	limit := rate.Inf
	if requestInterval > 0 {
		limit = rate.Every(requestInterval)
	}
	return &RateLimitedHTTPClient{
		underlying: underlying,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Do waits for the limiter, honoring the request's context, then sends.
func (rateLimitedClient *RateLimitedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := rateLimitedClient.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return rateLimitedClient.underlying.Do(req)
}

// TimeoutHTTPClient sends requests with a fixed timeout and User-Agent.
type TimeoutHTTPClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewTimeoutHTTPClient creates an HTTP client with the specified timeout.
func NewTimeoutHTTPClient(timeout time.Duration, userAgent string) *TimeoutHTTPClient {
	return &TimeoutHTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Do executes an HTTP request with the configured timeout.
func (timeoutClient *TimeoutHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if timeoutClient.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", timeoutClient.userAgent)
	}
	return timeoutClient.httpClient.Do(req)
}
