// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// Backoff delays for the retry loop. Declared as vars so tests can avoid
// real sleeps.
var (
	// RateLimitBaseDelay is the base duration for exponential backoff on
	// HTTP 429 responses. The wait doubles each attempt: 5 s, 10 s, 20 s.
	RateLimitBaseDelay = 5 * time.Second

	// TransportRetryDelay is the fixed wait between retries of requests
	// that failed at the transport level (connection refused, timeouts).
	TransportRetryDelay = 2 * time.Second
)

const defaultMaxRetries = 3

// DoWithRetry executes an HTTP request as a bounded-attempts retry loop with
// a wait policy keyed by failure kind:
//
//   - HTTP 429 (Too Many Requests): exponential backoff starting at
//     RateLimitBaseDelay, doubling each attempt. After maxRetries attempts
//     the last 429 response is returned so the caller can surface a
//     rate-limit condition.
//   - Transport error: fixed TransportRetryDelay between attempts. After
//     maxRetries attempts the last error is returned.
//   - Any other response: returned immediately, no retry.
//
// When maxRetries is 0 the default (3) is used. The request body is restored
// from GetBody on each attempt, so requests built with http.NewRequest from
// an in-memory reader retry correctly. On each 429 the response body is
// drained and closed before sleeping. If the context is cancelled during a
// backoff wait the function returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			// Transport failure: fixed backoff, bounded attempts.
			if attempt >= maxRetries-1 {
				return nil, err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(TransportRetryDelay):
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries: return the 429 response as-is.
		if attempt >= maxRetries-1 {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RateLimitBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
