package wikipedia

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the proactive request rate. Wikimedia asks anonymous
	// clients to stay well below 200 req/s; a reader needs far less.
	DefaultRate = 5.0

	// DefaultBurst allows a lookup (search + summary + title) in one go.
	DefaultBurst = 3

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// maxBackoff caps a server-requested pause.
	maxBackoff = time.Minute
)

// RateLimiter combines a token bucket with server back-off requests.
type RateLimiter struct {
	mu         sync.Mutex
	bucket     *rate.Limiter
	blockUntil time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	until := r.blockUntil
	r.mu.Unlock()

	if d := time.Until(until); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe records a Retry-After from a throttled response.
func (r *RateLimiter) Observe(resp *http.Response) {
	if resp == nil {
		return
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return
	}

	delay := time.Second
	if secs, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter)); err == nil && secs > 0 {
		delay = time.Duration(secs) * time.Second
	}
	delay = min(delay, maxBackoff)

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(delay); until.After(r.blockUntil) {
		r.blockUntil = until
	}
}

// BlockedUntil returns the end of the current back-off, if any.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockUntil
}
