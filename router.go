// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

// request is a dequeued call with its types erased to the handler type.
// The dispatch loop classifies it by mode() and drives it through
// invoke (blocking modes) or start/advance (suspending modes).
type request[H any] interface {
	name() string
	tag() Tag
	mode() Mode

	// blocking reports whether a SyncConcurrent invocation needs a worker.
	blocking(h *H) bool
	// invoke runs a blocking handler and records its result.
	invoke(h *H)
	// start runs a suspending program to its first effect, reporting
	// whether it already completed.
	start(h *H) bool
	// advance dispatches the pending effect. progressed is false when the
	// effect would block.
	advance() (done, progressed bool)

	// deliver fulfils the reply slot with the recorded result, reporting
	// false if the slot was already settled.
	deliver() bool
	// abandon settles the reply slot with an error wrapping cause.
	abandon(cause error)
}

// route delivers the result of a completed invocation. A slot that was
// already abandoned by its producer is not an error: the result is dropped.
func (rx *Receiver[H]) route(req request[H]) {
	if req.deliver() {
		rx.stats.delivered.Add(1)
		return
	}
	rx.stats.discarded.Add(1)
	rx.logger.Debug().
		Str("route", req.name()).
		Log("mailbox: reply discarded")
}

// fail abandons req with cause and records the failure.
func (rx *Receiver[H]) fail(req request[H], cause error) {
	req.abandon(cause)
	rx.stats.failures.Add(1)
	rx.logger.Warning().
		Str("route", req.name()).
		Str("mode", req.mode().String()).
		Err(cause).
		Log("mailbox: handler failed")
}
