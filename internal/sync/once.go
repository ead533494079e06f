// Package sync provides synchronization primitives the standard library
// lacks.
package sync

import (
	stdsync "sync"
	"sync/atomic"
)

// ResettableOnce runs a function at most once between resets. Unlike
// sync.Once it can be re-armed, and its error-aware form leaves the
// latch open when the function fails so a later caller runs it again.
//
// ResettableOnce is safe for concurrent use. The zero value is ready.
type ResettableOnce struct {
	done uint32
	mu   stdsync.Mutex
}

// Do runs f if nothing has completed since the last Reset. Concurrent
// callers block until the running f returns, then return without
// calling f.
func (o *ResettableOnce) Do(f func()) {
	if atomic.LoadUint32(&o.done) == 1 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done == 0 {
		defer atomic.StoreUint32(&o.done, 1)
		f()
	}
}

// DoWithError runs f if nothing has completed since the last Reset. An
// error from f does not latch, so the next call runs f again.
func (o *ResettableOnce) DoWithError(f func() error) error {
	if atomic.LoadUint32(&o.done) == 1 {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done == 0 {
		if err := f(); err != nil {
			return err
		}
		atomic.StoreUint32(&o.done, 1)
	}
	return nil
}

// Reset re-arms the latch. A Do in flight finishes first.
func (o *ResettableOnce) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	atomic.StoreUint32(&o.done, 0)
}

// Done reports whether the latch has fired since the last Reset.
func (o *ResettableOnce) Done() bool {
	return atomic.LoadUint32(&o.done) == 1
}
