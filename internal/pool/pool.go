// Package pool runs a fixed number of worker goroutines pulling stats-fetch
// jobs off a shared queue, restarting any worker that panics so one bad
// response never takes down the whole pipeline.
package pool

import (
	"context"
	"log/slog"
)

// Job is one unit of work a worker executes. It receives the pool's
// context so it can observe shutdown and honor cancellation in its own
// blocking calls (HTTP requests, rate limiter waits).
type Job func(ctx context.Context)

// Pool runs size workers pulling Jobs off an internal channel.
type Pool struct {
	jobs chan Job
	log  *slog.Logger
}

// New returns a Pool with size worker goroutines already running against
// ctx; they exit once ctx is cancelled. queueDepth bounds how many
// submitted jobs can be buffered before Submit blocks.
func New(ctx context.Context, size, queueDepth int, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{jobs: make(chan Job, queueDepth), log: log}
	for i := 0; i < size; i++ {
		p.spawnWorker(ctx, i)
	}
	return p
}

// Submit enqueues job, blocking if the queue is full. It returns
// ctx.Err() without enqueuing if ctx is already cancelled.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawnWorker starts worker id and, if it panics, logs the panic and starts
// a fresh replacement in its place rather than shrinking the pool.
func (p *Pool) spawnWorker(ctx context.Context, id int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("worker panicked, restarting", "worker", id, "panic", r)
				if ctx.Err() == nil {
					p.spawnWorker(ctx, id)
				}
			}
		}()
		p.runWorker(ctx, id)
	}()
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			job(ctx)
		}
	}
}
