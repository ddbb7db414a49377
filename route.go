// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"fmt"

	"code.hybscloud.com/kont"
)

// Route is one request variant of a handler type H: message type M,
// reply type R, and the handling mode. A route is used by producers to
// send (Route.Send, Route.Call) and by NewTable to build the routing table.
//
// Routes are compared by identity; declare each one once, typically as a
// package-level variable.
type Route[H, M, R any] struct {
	name     string
	mode     Mode
	fn       func(*H, M) R
	program  func(*H, M) kont.Expr[R]
	blocking func(*H, M) bool
}

// Sync declares a sequential route whose handler runs inline on the
// dispatch loop with exclusive access to the handler.
func Sync[H, M, R any](name string, fn func(*H, M) R) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return &Route[H, M, R]{name: name, mode: ModeSync, fn: fn}
}

// Async declares a sequential route whose handler is a cooperative
// program. The dispatch loop steps it to completion, with exclusive
// access, before receiving anything else.
func Async[H, M, R any](name string, fn func(*H, M) kont.Expr[R]) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return &Route[H, M, R]{name: name, mode: ModeAsync, program: fn}
}

// AsyncEff is Async for a Cont-world program.
func AsyncEff[H, M, R any](name string, fn func(*H, M) kont.Eff[R]) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return Async(name, reifyRoute(fn))
}

// SyncConcurrent declares a concurrent route with a blocking handler.
// The handler gets shared access and may run alongside other concurrent
// invocations.
//
// blocking is asked per message whether the invocation would block. If it
// reports false the handler runs inline during the burst and its result is
// routed without touching a worker; if true the invocation is offloaded to
// a blocking worker. A nil predicate offloads every invocation.
func SyncConcurrent[H, M, R any](name string, fn func(*H, M) R, blocking func(*H, M) bool) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return &Route[H, M, R]{name: name, mode: ModeSyncConcurrent, fn: fn, blocking: blocking}
}

// AsyncConcurrent declares a concurrent route whose handler is a
// cooperative program multiplexed with the rest of the burst.
func AsyncConcurrent[H, M, R any](name string, fn func(*H, M) kont.Expr[R]) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return &Route[H, M, R]{name: name, mode: ModeAsyncConcurrent, program: fn}
}

// AsyncConcurrentEff is AsyncConcurrent for a Cont-world program.
func AsyncConcurrentEff[H, M, R any](name string, fn func(*H, M) kont.Eff[R]) *Route[H, M, R] {
	if fn == nil {
		panic("mailbox: nil handler function for route " + name)
	}
	return AsyncConcurrent(name, reifyRoute(fn))
}

func reifyRoute[H, M, R any](fn func(*H, M) kont.Eff[R]) func(*H, M) kont.Expr[R] {
	return func(h *H, m M) kont.Expr[R] {
		return kont.Reify(fn(h, m))
	}
}

// Name returns the route name.
func (r *Route[H, M, R]) Name() string { return r.name }

// Mode returns the handling mode.
func (r *Route[H, M, R]) Mode() Mode { return r.mode }

func (r *Route[H, M, R]) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.mode)
}

func (r *Route[H, M, R]) bindingName() string { return r.name }

func (r *Route[H, M, R]) bindingMode() Mode { return r.mode }

func (*Route[H, M, R]) handler(*H) {}

// Send enqueues msg on tx and returns the slot its reply will be delivered to.
//
// Send never blocks. It fails with ErrUnknownRoute if r is not part of the
// table tx was built from, and with ErrClosed if tx or the channel is
// closed; nothing is enqueued in either case.
func (r *Route[H, M, R]) Send(tx *Sender[H], msg M) (*Reply[R], error) {
	tag, ok := tx.ch.table.lookup(r)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, r.name)
	}
	if tx.closed.Load() != 0 {
		return nil, ErrClosed
	}
	c := &call[H, M, R]{route: r, t: tag, msg: msg, reply: newReply[R]()}
	if err := tx.ch.queue.push(c); err != nil {
		return nil, err
	}
	return c.reply, nil
}

// Call sends msg and waits for its reply.
func (r *Route[H, M, R]) Call(ctx context.Context, tx *Sender[H], msg M) (R, error) {
	reply, err := r.Send(tx, msg)
	if err != nil {
		var zero R
		return zero, err
	}
	return reply.Wait(ctx)
}

// call is one enqueued request: the message, its route, and its reply slot.
// The dispatch loop owns it from dequeue until its reply is routed.
type call[H, M, R any] struct {
	route *Route[H, M, R]
	t     Tag
	msg   M
	reply *Reply[R]
	value R
	task  *Task[R]
}

func (c *call[H, M, R]) name() string { return c.route.name }

func (c *call[H, M, R]) tag() Tag { return c.t }

func (c *call[H, M, R]) mode() Mode { return c.route.mode }

func (c *call[H, M, R]) blocking(h *H) bool {
	if c.route.blocking == nil {
		return true
	}
	return c.route.blocking(h, c.msg)
}

func (c *call[H, M, R]) invoke(h *H) {
	c.value = c.route.fn(h, c.msg)
}

func (c *call[H, M, R]) start(h *H) bool {
	c.task = NewTask(c.route.program(h, c.msg))
	if c.task.Done() {
		c.value = c.task.Result()
		return true
	}
	return false
}

func (c *call[H, M, R]) advance() (done, progressed bool) {
	if err := c.task.Advance(); err != nil {
		return false, false
	}
	if c.task.Done() {
		c.value = c.task.Result()
		return true, true
	}
	return false, true
}

func (c *call[H, M, R]) deliver() bool {
	return c.reply.fulfill(c.value)
}

func (c *call[H, M, R]) abandon(cause error) {
	c.reply.fail(cause)
}
