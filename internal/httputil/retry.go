// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP client helpers for outbound API calls.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// Retrier executes HTTP requests and retries on HTTP 429 (Too Many
// Requests) with exponential backoff. The wait starts at RetryBaseDelay
// (10 s) and doubles each attempt: 10 s, 20 s, 40 s, 80 s, 160 s.
type Retrier struct {
	// Client is the underlying HTTP client. nil means http.DefaultClient.
	Client *http.Client

	// MaxRetries caps the retry attempts. Non-positive means 5.
	MaxRetries int

	// Logger reports each backoff wait at debug level. nil disables it.
	Logger *slog.Logger
}

// Do executes the request, cloning it per attempt so retries carry the
// context. On each 429 the response body is drained and closed before
// sleeping. If the context is cancelled during a backoff wait the context
// error is returned. After exhausting retries the last 429 response is
// returned so the caller can inspect it.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries — return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if r.Logger != nil {
			r.Logger.Debug("rate limited, backing off",
				"wait", backoff, "attempt", attempt+1, "max_retries", maxRetries)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
