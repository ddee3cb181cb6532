package dispatch

import (
	"context"
	"sync"
)

// Lane serializes the units submitted through it. Each unit starts only after
// the previous one has finished, whatever its outcome.
type Lane struct {
	pool *Pool

	mu   sync.Mutex
	tail chan struct{} // closed when the most recently submitted unit finishes
}

// SubmitInLane schedules fn on the lane's pool after every unit previously submitted to l
func SubmitInLane[T any](ctx context.Context, l *Lane, fn func(ctx context.Context) (T, error)) *Future[T] {
	l.mu.Lock()
	prev := l.tail
	mine := make(chan struct{})
	l.tail = mine
	l.mu.Unlock()

	f := newFuture[T]()
	var zero T
	p := l.pool
	if !p.track() {
		f.resolve(zero, ErrPoolClosed)
		// Keep the chain intact for any unit queued behind this one
		go func() {
			if prev != nil {
				<-prev
			}
			close(mine)
		}()
		return f
	}

	go func() {
		defer p.wg.Done()
		defer close(mine)

		if prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				f.resolve(zero, ctx.Err())
				<-prev
				return
			}
		}
		f.resolve(execute(ctx, p, fn))
	}()
	return f
}

// DoInLane submits fn to the lane and waits for its result
func DoInLane[T any](ctx context.Context, l *Lane, fn func(ctx context.Context) (T, error)) (T, error) {
	return SubmitInLane(ctx, l, fn).Await(ctx)
}
