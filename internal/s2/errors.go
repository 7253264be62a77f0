// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import "errors"

// Terminal failure conditions surfaced by the client.
var (
	// ErrRateLimited indicates the API kept returning HTTP 429 after the
	// retry attempts were exhausted.
	ErrRateLimited = errors.New("semantic scholar rate limit exceeded")

	// ErrRequestFailed indicates a batch request failed for a reason other
	// than rate limiting (transport error after retries, or a non-2xx
	// response).
	ErrRequestFailed = errors.New("semantic scholar request failed")
)

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRequestFailed reports whether err is a non-rate-limit request failure.
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}
