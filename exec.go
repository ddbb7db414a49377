// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// taskHandler implements kont.Handler for cooperative effects.
// Waits on iox.ErrWouldBlock, converting non-blocking dispatch into
// blocking evaluation for Exec/ExecExpr.
type taskHandler[R any] struct {
	ctx *taskContext
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h taskHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	top, ok := op.(taskDispatcher)
	if !ok {
		panic("mailbox: unhandled effect in taskHandler")
	}
	return dispatchWait(h.ctx, top), true
}

// dispatchWait blocks until DispatchTask succeeds, backing off on
// iox.ErrWouldBlock with iox.Backoff.
func dispatchWait(ctx *taskContext, top taskDispatcher) kont.Resumed {
	var bo iox.Backoff
	for {
		v, err := top.DispatchTask(ctx)
		if err == nil {
			ctx.reset()
			return v
		}
		bo.Wait()
	}
}

// Exec runs a Cont-world cooperative program on the calling goroutine,
// waiting out each effect. Handlers can be unit tested this way without
// a channel.
func Exec[R any](program kont.Eff[R]) R {
	h := taskHandler[R]{ctx: &taskContext{}}
	return kont.Handle(program, h)
}

// ExecExpr runs an Expr-world cooperative program on the calling goroutine.
func ExecExpr[R any](program kont.Expr[R]) R {
	h := taskHandler[R]{ctx: &taskContext{}}
	return kont.HandleExpr(program, h)
}
