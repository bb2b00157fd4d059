// Package retry implements the exponential-backoff retry loop used by
// tactcdn's CDN fetches. The downloader package retries its chunk fetches
// with its own loop.
package retry

import (
	"context"
	"fmt"
	"time"
)

// ExponentialBackoff calls fn until it succeeds or maxRetries attempts have
// been made, doubling the wait between attempts starting at startDuration.
// It returns ctx.Err() if ctx is cancelled while waiting.
func ExponentialBackoff(ctx context.Context, startDuration time.Duration, maxRetries int, fn func() error) error {
	var err error
	wait := startDuration
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
	return fmt.Errorf("failed after %d retries; last error: %w", maxRetries, err)
}
