// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"code.hybscloud.com/kont"
)

// taskContext is the per-task scheduling state effects dispatch against.
// It is reset every time the task resumes, so each effect starts fresh.
type taskContext struct {
	armed    bool
	deadline time.Time
}

func (ctx *taskContext) reset() {
	*ctx = taskContext{}
}

// taskDispatcher is the structural interface for cooperative effects.
// DispatchTask is non-blocking: it returns iox.ErrWouldBlock while the
// effect is not ready to resume.
type taskDispatcher interface {
	DispatchTask(ctx *taskContext) (kont.Resumed, error)
}

// Task is a cooperative program being stepped one effect at a time.
// The dispatch loop runs suspending handlers as tasks; Task is exported so
// the same stepping can be driven by hand.
type Task[R any] struct {
	result R
	susp   *kont.Suspension[R]
	ctx    taskContext
}

// NewTask evaluates program until its first effect suspension.
func NewTask[R any](program kont.Expr[R]) *Task[R] {
	t := &Task[R]{}
	t.result, t.susp = kont.StepExpr(program)
	return t
}

// Done reports whether the program has completed.
func (t *Task[R]) Done() bool { return t.susp == nil }

// Result returns the program's result. It is the zero value until Done.
func (t *Task[R]) Result() R { return t.result }

// Op returns the pending effect operation, or nil if the task is done.
func (t *Task[R]) Op() kont.Operation {
	if t.susp == nil {
		return nil
	}
	return t.susp.Op()
}

// Advance dispatches the pending effect.
//
// On success (nil error) the suspension is consumed and the program runs
// to its next effect or to completion. On iox.ErrWouldBlock the effect is
// not ready yet and Advance may be retried. Advance on a done task is a no-op.
func (t *Task[R]) Advance() error {
	if t.susp == nil {
		return nil
	}
	op, ok := t.susp.Op().(taskDispatcher)
	if !ok {
		panic("mailbox: unhandled effect in Task.Advance")
	}
	v, err := op.DispatchTask(&t.ctx)
	if err != nil {
		return err
	}
	t.ctx.reset()
	t.result, t.susp = t.susp.Resume(v)
	return nil
}

// Discard releases a task that will not be advanced again.
func (t *Task[R]) Discard() {
	if t.susp != nil {
		t.susp.Discard()
		t.susp = nil
	}
}
