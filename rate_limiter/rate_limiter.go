package rate_limiter

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// APILimiter throttles calls to an upstream API. A call must Wait before it
// starts and Release once it has finished.
type APILimiter struct {
	Name string

	// underlying rate limiter
	limiter *rate.Limiter
	// semaphore to control concurrency
	sem            *semaphore.Weighted
	maxConcurrency int64
}

func NewAPILimiter(d *Definition) *APILimiter {
	res := &APILimiter{
		Name:           d.Name,
		maxConcurrency: d.MaxConcurrency,
	}
	if d.FillRate > 0 && d.BucketSize > 0 {
		res.limiter = rate.NewLimiter(d.limit(), int(d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		res.sem = semaphore.NewWeighted(d.MaxConcurrency)
	}
	return res
}

func (l *APILimiter) String() string {
	var parts []string
	if l.limiter != nil {
		parts = append(parts, fmt.Sprintf("Limit(/s): %v, Burst: %d", l.limiter.Limit(), l.limiter.Burst()))
	}
	if l.sem != nil {
		parts = append(parts, fmt.Sprintf("MaxConcurrency: %d", l.maxConcurrency))
	}
	return strings.Join(parts, " ")
}

// Wait blocks until a concurrency slot and a rate token are available.
// On error no slot is held.
func (l *APILimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.Release()
			return err
		}
	}
	return nil
}

func (l *APILimiter) Release() {
	if l == nil || l.sem == nil {
		return
	}
	l.sem.Release(1)
}
