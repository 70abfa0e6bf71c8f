// Package limiter paces outbound calls to collaborator services.
package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DynamicRateLimiter is a rate limiter whose parameters can be
// adjusted at runtime, e.g. in response to a Retry-After header.
type DynamicRateLimiter struct {
	limiter *rate.Limiter
	updates chan rateParams
	stop    sync.Once
	done    chan struct{}
}

type rateParams struct {
	interval time.Duration
	burst    int
}

func New(interval time.Duration, burst int) *DynamicRateLimiter {
	limiter := rate.NewLimiter(rate.Every(interval), burst)
	updates := make(chan rateParams)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case params := <-updates:
				limiter.SetLimit(rate.Every(params.interval))
				limiter.SetBurst(params.burst)
			case <-done:
				return
			}
		}
	}()

	return &DynamicRateLimiter{
		limiter: limiter,
		updates: updates,
		done:    done,
	}
}

// Wait blocks until the limiter permits an event or the context is done.
func (l *DynamicRateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now. Fire-and-forget
// callers drop the event instead of blocking.
func (l *DynamicRateLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Update changes the rate parameters.
func (l *DynamicRateLimiter) Update(interval time.Duration, burst int) {
	select {
	case l.updates <- rateParams{interval: interval, burst: burst}:
	case <-l.done:
	}
}

// Stop releases the limiter's background goroutine.
func (l *DynamicRateLimiter) Stop() {
	l.stop.Do(func() {
		close(l.done)
	})
}
