// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"code.hybscloud.com/iox"
	"github.com/sourcegraph/conc/panics"
)

// completion is posted by a blocking worker when its invocation ends.
// failure is nil when the handler returned normally.
type completion[H any] struct {
	req     request[H]
	failure *WorkerError
}

// work runs a blocking invocation on a worker goroutine. The burst holds
// shared access to h until every worker it started has returned.
//
// A panic is recovered and reported as a failed completion. A handler that
// calls runtime.Goexit never returns to the finished assignment, so the
// deferred post reports it as aborted.
func (rx *Receiver[H]) work(h *H, req request[H]) {
	var failure *WorkerError
	finished := false
	defer func() {
		if !finished {
			failure = newWorkerError(req, nil)
		}
		rx.complete(completion[H]{req: req, failure: failure})
	}()
	if rec := panics.Try(func() { req.invoke(h) }); rec != nil {
		failure = newWorkerError(req, rec)
	}
	finished = true
}

// complete posts c to the completion queue, backing off while it is full.
func (rx *Receiver[H]) complete(c completion[H]) {
	var bo iox.Backoff
	for {
		err := rx.completions.Enqueue(&c)
		if err == nil {
			return
		}
		if !iox.IsWouldBlock(err) {
			panic("mailbox: completion queue: " + err.Error())
		}
		bo.Wait()
	}
}
