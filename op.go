// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Sleep is the effect operation for pausing a cooperative handler.
// Perform(Sleep{D: d}) resumes once d has elapsed since it was first dispatched.
type Sleep struct {
	kont.Phantom[struct{}]
	D time.Duration
}

// DispatchTask arms the deadline on first dispatch.
// Non-blocking: returns iox.ErrWouldBlock until the deadline passes.
func (s Sleep) DispatchTask(ctx *taskContext) (kont.Resumed, error) {
	now := time.Now()
	if !ctx.armed {
		ctx.armed = true
		ctx.deadline = now.Add(s.D)
	}
	if now.Before(ctx.deadline) {
		return nil, iox.ErrWouldBlock
	}
	return struct{}{}, nil
}

// Yield is the effect operation for giving up one scheduling round.
// Perform(Yield{}) lets every other pending invocation run before resuming.
type Yield struct {
	kont.Phantom[struct{}]
}

// DispatchTask blocks exactly once.
func (Yield) DispatchTask(ctx *taskContext) (kont.Resumed, error) {
	if !ctx.armed {
		ctx.armed = true
		return nil, iox.ErrWouldBlock
	}
	return struct{}{}, nil
}

// Await is the effect operation for waiting on another reply slot, such as
// a request the handler sent to a different mailbox.
// Perform(Await[T]{Reply: r}) resumes with Right(value) once r is
// fulfilled, or Left(err) once it is abandoned.
type Await[T any] struct {
	kont.Phantom[kont.Either[error, T]]
	Reply *Reply[T]
}

// DispatchTask polls the reply slot.
// Non-blocking: returns iox.ErrWouldBlock while the slot is pending.
func (a Await[T]) DispatchTask(*taskContext) (kont.Resumed, error) {
	v, err := a.Reply.TryResult()
	if iox.IsWouldBlock(err) {
		return nil, err
	}
	if err != nil {
		return kont.Left[error, T](err), nil
	}
	return kont.Right[error, T](v), nil
}

// Poll is the effect operation for waiting on an arbitrary readiness check.
// Perform(Poll[T]{F: f}) resumes with the value f returns once f reports ready.
// F is called on the dispatch loop and must not block.
type Poll[T any] struct {
	kont.Phantom[T]
	F func() (T, bool)
}

// DispatchTask calls F.
// Non-blocking: returns iox.ErrWouldBlock while F reports not ready.
func (p Poll[T]) DispatchTask(*taskContext) (kont.Resumed, error) {
	v, ok := p.F()
	if !ok {
		return nil, iox.ErrWouldBlock
	}
	return v, nil
}
