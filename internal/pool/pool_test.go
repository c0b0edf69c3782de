package pool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prism-overlay/bwoverlay/internal/pool"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pool.New(ctx, 4, 16, nil)

	var completed atomic.Int32
	for i := 0; i < 20; i++ {
		requireNoError(t, p.Submit(ctx, func(ctx context.Context) {
			completed.Add(1)
		}))
	}

	assert.Eventually(t, func() bool {
		return completed.Load() == 20
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPool_RestartsAfterPanickingJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pool.New(ctx, 1, 4, nil)

	requireNoError(t, p.Submit(ctx, func(ctx context.Context) {
		panic("boom")
	}))

	var completed atomic.Int32
	requireNoError(t, p.Submit(ctx, func(ctx context.Context) {
		completed.Add(1)
	}))

	assert.Eventually(t, func() bool {
		return completed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
