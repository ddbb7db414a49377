// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"code.hybscloud.com/kont"
)

// SleepThen sleeps for d and then continues with next.
// Fuses Perform(Sleep{D: d}) + Then.
func SleepThen[B any](d time.Duration, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Sleep{D: d}), next)
}

// YieldThen yields one scheduling round and then continues with next.
// Fuses Perform(Yield{}) + Then.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Yield{}), next)
}

// AwaitBind waits for reply and passes the outcome to f.
// Fuses Perform(Await[T]{Reply: reply}) + Bind.
func AwaitBind[T, B any](reply *Reply[T], f func(kont.Either[error, T]) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Await[T]{Reply: reply}), f)
}

// PollBind waits until poll reports ready and passes its value to f.
// Fuses Perform(Poll[T]{F: poll}) + Bind.
func PollBind[T, B any](poll func() (T, bool), f func(T) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Poll[T]{F: poll}), f)
}
