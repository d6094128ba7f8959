// Package httpretry provides an HTTP client with automatic retry,
// exponential backoff, and jitter for calls to external APIs.
package httpretry

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/brokeriq/renewal-monitor/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient wraps an HTTPDoer with retry logic using exponential
// backoff and jitter.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient creates a RetryClient around the given HTTPDoer.
// A nil client gets a default http.Client with a 30s timeout.
// maxRetries is the number of retry attempts after the initial request.
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  1 * time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do executes the request, retrying on retryable status codes
// (429, 500, 502, 503, 504) and transient network errors. Client
// errors (4xx other than 429) and context cancellation are returned
// immediately. On the final attempt the response is returned as-is so
// the caller can inspect the status and body.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			// Reset request body for retry if applicable
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: failed to reset request body: %w", err)
				}
				req.Body = body
			}

			delay := rc.backoff(attempt)
			logger.Warn("retrying request",
				"attempt", attempt,
				"max", rc.maxRetries,
				"method", req.Method,
				"host", req.URL.Host,
				"delay", delay.String())

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			// Network/timeout error, retry
			continue
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt == rc.maxRetries {
			return resp, nil
		}

		// Drain for connection reuse before retrying
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff computes the delay before the given retry attempt:
// baseDelay * 2^(attempt-1), capped at maxDelay, with ±25% jitter.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	delay := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(rc.maxDelay) {
		delay = float64(rc.maxDelay)
	}
	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	return time.Duration(delay + jitter)
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
