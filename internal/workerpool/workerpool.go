// Package workerpool provides the two scoped, fixed-size pools the build
// pipeline runs on: a CPU pool sized at the host's logical CPU count for
// tokenization and trie/archive construction, and an I/O pool at half that
// size for fan-out file writes inside a postings-writer worker.
//
// Go has no GIL, so both pools are goroutine pools rather than OS processes
// or threads; composition replaces the original's process-pool/thread-pool
// mixins (Design Notes §9): a single Pool interface, two constructors, no
// inheritance.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks with bounded concurrency and can be shut down on every
// exit path, success or failure.
type Pool interface {
	// Go schedules task to run, blocking only if the pool is saturated.
	// It returns ctx.Err() without scheduling task if ctx is already done,
	// and nil otherwise; task errors are reported by Wait.
	Go(ctx context.Context, task func() error) error
	// Wait blocks until all scheduled tasks complete and returns the
	// first error, if any.
	Wait() error
	// Shutdown releases pool resources. hard=true cancels any
	// in-flight/queued work instead of draining it.
	Shutdown(hard bool)
}

type pool struct {
	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewCPUPool returns a pool sized at runtime.NumCPU(), for CPU-bound work:
// per-file tokenization, per-subtree trie construction, per-subtree archive
// creation.
func NewCPUPool(ctx context.Context) (Pool, context.Context) {
	return newPool(ctx, runtime.NumCPU())
}

// NewIOPool returns a pool sized at runtime.NumCPU()/2 (minimum 1), for
// fan-out I/O: the many small postings-file writes a writer worker issues
// during a spill.
func NewIOPool(ctx context.Context) (Pool, context.Context) {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return newPool(ctx, n)
}

func newPool(ctx context.Context, size int) (Pool, context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(cctx)
	g.SetLimit(size)
	return &pool{group: g, cancel: cancel}, gctx
}

func (p *pool) Go(ctx context.Context, task func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	p.group.Go(task)
	return nil
}

func (p *pool) Wait() error {
	return p.group.Wait()
}

func (p *pool) Shutdown(hard bool) {
	if hard {
		p.cancel()
	}
	_ = p.group.Wait()
	p.cancel()
}

// Map runs fn over items using pool, waiting for every item before
// returning. It stops launching new items (but does not cancel in-flight
// ones) once an error has been recorded, and returns that error.
func Map[T any](ctx context.Context, p Pool, items []T, fn func(T) error) error {
	for _, item := range items {
		item := item
		if err := p.Go(ctx, func() error { return fn(item) }); err != nil {
			break
		}
	}
	return p.Wait()
}
