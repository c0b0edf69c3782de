// Package ratelimit implements a sliding-window request limiter: at most
// limit admissions are allowed to have started within any trailing window.
package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent callers to limit at a time, and additionally
// holds each caller until the admission that is limit-calls-old has aged
// past window, so no sliding window of that length ever sees more than
// limit admissions.
type Limiter struct {
	limit  int
	window time.Duration

	sem *semaphore.Weighted

	mu         sync.Mutex
	admissions *list.List // oldest admission time at Front()
}

// New returns a Limiter admitting at most limit callers per window. The
// window is pre-seeded as already elapsed, so the first limit calls proceed
// immediately.
func New(limit int, window time.Duration) *Limiter {
	admissions := list.New()
	for i := 0; i < limit; i++ {
		admissions.PushBack(time.Now().Add(-window))
	}
	return &Limiter{
		limit:      limit,
		window:     window,
		sem:        semaphore.NewWeighted(int64(limit)),
		admissions: admissions,
	}
}

// Acquire blocks until a slot is available and the sliding window permits
// admission, or ctx is cancelled. Every successful Acquire must be paired
// with a Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	l.mu.Lock()
	oldest := l.admissions.Remove(l.admissions.Front()).(time.Time)
	l.mu.Unlock()

	if wait := time.Until(oldest.Add(l.window)); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			l.mu.Lock()
			l.admissions.PushFront(oldest)
			l.mu.Unlock()
			l.sem.Release(1)
			return ctx.Err()
		}
	}

	l.mu.Lock()
	l.admissions.PushBack(time.Now())
	l.mu.Unlock()

	return nil
}

// Release frees the slot Acquire took, letting a new caller through.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
