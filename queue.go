// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// queueNode is a link of the intrusive MPSC list.
type queueNode[T any] struct {
	next  atomic.Pointer[queueNode[T]]
	value T
}

// popStatus is the outcome of a non-blocking pop.
type popStatus uint8

const (
	popOK popStatus = iota
	popEmpty
	popClosed // closed and drained
)

// queue is the unbounded multi-producer single-consumer mailbox queue.
//
// Producers append by swapping the tail and linking the previous node,
// so push never blocks and order across producers is the swap order.
// The consumer owns head (a stub whose successor is the next value).
//
// mu is held shared by push and exclusively by close: once close returns,
// every push has either fully linked its node or failed with ErrClosed.
type queue[T any] struct {
	head   *queueNode[T]
	tail   atomic.Pointer[queueNode[T]]
	mu     sync.RWMutex
	closed atomix.Uint32
	wake   chan struct{}
	done   chan struct{}
}

func newQueue[T any]() *queue[T] {
	stub := &queueNode[T]{}
	q := &queue[T]{
		head: stub,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	q.tail.Store(stub)
	return q
}

// push appends v. Safe for concurrent producers.
func (q *queue[T]) push(v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() != 0 {
		return ErrClosed
	}
	n := &queueNode[T]{value: v}
	prev := q.tail.Swap(n)
	prev.next.Store(n)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// close stops further pushes. Values already queued remain poppable.
func (q *queue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed.Load() != 0 {
		return
	}
	q.closed.Add(1)
	close(q.done)
}

func (q *queue[T]) isClosed() bool {
	return q.closed.Load() != 0
}

// dequeue pops the head value, if linked. Consumer only.
func (q *queue[T]) dequeue() (T, bool) {
	var zero T
	next := q.head.next.Load()
	if next == nil {
		return zero, false
	}
	v := next.value
	next.value = zero
	q.head = next
	return v, true
}

// tryPop never blocks. popClosed is reported only when the queue is
// closed and nothing remains. Consumer only.
func (q *queue[T]) tryPop() (T, popStatus) {
	if v, ok := q.dequeue(); ok {
		return v, popOK
	}
	if q.isClosed() {
		// pushes that won the race against close are linked by now
		if v, ok := q.dequeue(); ok {
			return v, popOK
		}
		var zero T
		return zero, popClosed
	}
	var zero T
	return zero, popEmpty
}

// pop waits for the next value. Returns ErrClosed once the queue is closed
// and drained, or ctx.Err() if ctx is done first. Consumer only.
func (q *queue[T]) pop(ctx context.Context) (T, error) {
	for {
		v, st := q.tryPop()
		switch st {
		case popOK:
			return v, nil
		case popClosed:
			var zero T
			return zero, ErrClosed
		}
		select {
		case <-q.wake:
		case <-q.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
