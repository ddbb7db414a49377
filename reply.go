// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"sync"

	"code.hybscloud.com/iox"
)

// Reply is the single-use slot pairing one request with its waiter.
//
// A Reply settles exactly once: fulfilled with the handler's value, or
// abandoned with an error. Whatever arrives after settlement is discarded.
type Reply[R any] struct {
	done  chan struct{}
	once  sync.Once
	value R
	err   error
}

func newReply[R any]() *Reply[R] {
	return &Reply[R]{done: make(chan struct{})}
}

// settle completes the slot, reporting false if it had already settled.
func (r *Reply[R]) settle(value R, err error) (won bool) {
	r.once.Do(func() {
		r.value = value
		r.err = err
		won = true
		close(r.done)
	})
	return won
}

func (r *Reply[R]) fulfill(value R) bool {
	return r.settle(value, nil)
}

func (r *Reply[R]) fail(cause error) bool {
	var zero R
	return r.settle(zero, abandonedBy(cause))
}

// Done returns a channel closed once the slot has settled.
func (r *Reply[R]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the slot settles or ctx is done.
// An abandoned slot yields an error matching ErrAbandoned, and the cause
// (e.g. ErrClosed or a *WorkerError) where there is one.
// Cancelling ctx does not abandon the slot; Wait may be called again.
func (r *Reply[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// TryResult returns the settled outcome without blocking.
// Returns iox.ErrWouldBlock while the slot is pending.
func (r *Reply[R]) TryResult() (R, error) {
	select {
	case <-r.done:
		return r.value, r.err
	default:
		var zero R
		return zero, iox.ErrWouldBlock
	}
}

// Abandon gives up on the reply. The handler still runs; its value is
// discarded by the reply router.
func (r *Reply[R]) Abandon() {
	r.fail(nil)
}
