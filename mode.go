// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

// Mode classifies how the receiver handles a request.
//
// Sequential modes run with exclusive access to the handler, one at a time.
// Concurrent modes run with shared access, many in flight within a burst.
type Mode uint8

const (
	// ModeSync runs the handler inline on the dispatch loop (exclusive, blocking).
	ModeSync Mode = iota
	// ModeAsync steps a cooperative program to completion on the dispatch
	// loop before anything else is received (exclusive, suspending).
	ModeAsync
	// ModeSyncConcurrent runs the handler inline or on a blocking worker,
	// depending on the route's blocking predicate (shared, blocking).
	ModeSyncConcurrent
	// ModeAsyncConcurrent multiplexes a cooperative program with the rest of
	// the burst (shared, suspending).
	ModeAsyncConcurrent
)

// Concurrent reports whether m admits a request into a burst.
func (m Mode) Concurrent() bool {
	return m == ModeSyncConcurrent || m == ModeAsyncConcurrent
}

// Suspending reports whether m handles requests as cooperative programs.
func (m Mode) Suspending() bool {
	return m == ModeAsync || m == ModeAsyncConcurrent
}

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	case ModeSyncConcurrent:
		return "sync-concurrent"
	case ModeAsyncConcurrent:
		return "async-concurrent"
	}
	return "unknown"
}
