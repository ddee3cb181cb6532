package backup

import "sync/atomic"

// importLock provides non-blocking lock semantics using atomic operations
type importLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking
func (l *importLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release must only be called by the goroutine that acquired the lock
func (l *importLock) Release() {
	l.state.Store(0)
}
