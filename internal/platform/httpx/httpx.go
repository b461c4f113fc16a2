// Package httpx holds the retry policy shared by outbound HTTP clients.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 599:
		return true
	}
	return false
}

// Retryable reports whether a call that failed with err is worth repeating.
// Caller cancellation never is; a timed out attempt is.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc StatusCoder
	return errors.As(err, &sc) && RetryableStatus(sc.HTTPStatusCode())
}

// Backoff doubles the wait from Initial up to Max and allows Retries extra
// attempts after the first. A Retry-After header on the failed response
// replaces the computed wait, still capped at Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Retries int
}

// Attempt performs one call. resp may be nil and is only read for headers.
type Attempt func(ctx context.Context) (*http.Response, error)

// Do runs attempt until it succeeds, fails with a non-retryable error, the
// retries are spent, or ctx ends. onRetry, if set, is told about each wait.
func (b Backoff) Do(ctx context.Context, attempt Attempt, onRetry func(n int, wait time.Duration, err error)) error {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := attempt(ctx)
		if err == nil {
			return nil
		}
		if n >= b.Retries || !Retryable(err) {
			return err
		}
		wait := jitter(b.wait(n, resp))
		if onRetry != nil {
			onRetry(n+1, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (b Backoff) wait(n int, resp *http.Response) time.Duration {
	d := b.Initial << n
	if resp != nil {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs >= 0 {
			d = time.Duration(secs) * time.Second
		}
	}
	if b.Max > 0 && (d > b.Max || d < 0) {
		d = b.Max
	}
	return d
}

// jitter spreads d by +/-20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
