// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"code.hybscloud.com/kont"
)

var (
	exprReturnFrame kont.Frame  = kont.ReturnFrame{}
	exprYield       kont.Erased = Yield{}
)

func identityResume(v kont.Erased) kont.Erased { return v }

// thenFrame chains next after the effect that precedes it.
func thenFrame[B any](next kont.Expr[B]) kont.Frame {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	return tf
}

func bindUnwind[T, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(T) kont.Expr[B])
	result := f(current.(T))
	return kont.Erased(result.Value), result.Frame
}

// bindFrame passes the resumed value of type T to f.
func bindFrame[T, B any](f func(T) kont.Expr[B]) kont.Frame {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = bindUnwind[T, B]
	return bf
}

func suspend[B any](op kont.Erased, next kont.Frame) kont.Expr[B] {
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = next
	return kont.ExprSuspend[B](ef)
}

// ExprSleepThen sleeps for d and then continues with next.
// Fuses ExprPerform(Sleep{D: d}) + ExprThen.
func ExprSleepThen[B any](d time.Duration, next kont.Expr[B]) kont.Expr[B] {
	return suspend[B](Sleep{D: d}, thenFrame(next))
}

// ExprYieldThen yields one scheduling round and then continues with next.
// Fuses ExprPerform(Yield{}) + ExprThen.
func ExprYieldThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return suspend[B](exprYield, thenFrame(next))
}

// ExprAwaitBind waits for reply and passes the outcome to f.
// Fuses ExprPerform(Await[T]{Reply: reply}) + ExprBind.
func ExprAwaitBind[T, B any](reply *Reply[T], f func(kont.Either[error, T]) kont.Expr[B]) kont.Expr[B] {
	return suspend[B](Await[T]{Reply: reply}, bindFrame(f))
}

// ExprPollBind waits until poll reports ready and passes its value to f.
// Fuses ExprPerform(Poll[T]{F: poll}) + ExprBind.
func ExprPollBind[T, B any](poll func() (T, bool), f func(T) kont.Expr[B]) kont.Expr[B] {
	return suspend[B](Poll[T]{F: poll}, bindFrame(f))
}
