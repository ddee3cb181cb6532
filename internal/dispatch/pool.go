package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned for units submitted after Close
var ErrPoolClosed = errors.New("dispatch: pool closed")

// Pool runs units of work on at most Workers goroutines at a time
type Pool struct {
	sem     *semaphore.Weighted
	workers int

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	lanes  map[string]*Lane
}

// NewPool creates a pool of the given size (default: runtime.NumCPU())
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
		lanes:   make(map[string]*Lane),
	}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// track registers a unit with the pool; false once the pool is closed
func (p *Pool) track() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

// Close stops accepting units and waits for every accepted unit to finish
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Lane returns the lane for key, creating it on first use
func (p *Pool) Lane(key string) *Lane {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.lanes[key]
	if !ok {
		l = &Lane{pool: p}
		p.lanes[key] = l
	}
	return l
}

// DropLane forgets the lane for key. Units already submitted to it still run in order.
func (p *Pool) DropLane(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.lanes, key)
}

// Submit schedules fn on the pool
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	if !p.track() {
		var zero T
		f.resolve(zero, ErrPoolClosed)
		return f
	}
	go func() {
		defer p.wg.Done()
		f.resolve(execute(ctx, p, fn))
	}()
	return f
}

// Do submits fn and waits for its result
func Do[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	return Submit(ctx, p, fn).Await(ctx)
}

// execute waits for a worker slot, then runs fn detached from ctx cancellation
func execute[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (result T, err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return result, err
	}
	defer p.sem.Release(1)

	// Acquire may succeed on an already cancelled context
	if err := ctx.Err(); err != nil {
		return result, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch: unit panicked: %v", r)
		}
	}()
	return fn(context.WithoutCancel(ctx))
}
