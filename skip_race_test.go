// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package mailbox_test

import "testing"

// skipRace skips tests that route through blocking workers.
// Worker completions travel over an lfq MPSC queue whose cross-variable
// memory ordering (store-release on the slot, load-acquire on the
// sequence) is invisible to the race detector, producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: lfq completion queue uses cross-variable memory ordering")
}
