// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"context"
	"errors"

	"code.hybscloud.com/iox"
	"github.com/sourcegraph/conc/panics"
)

// Step processes the next unit of work: one sequential request, or one
// burst seeded by a concurrent request.
//
// Step returns nil when it made progress, ErrClosed once the channel is
// closed and every request has been handled (clean shutdown), ctx.Err() if
// ctx is done while waiting for a request, or a fatal error: a *WorkerError
// when a blocking worker failed, a *PanicError when a handler panicked.
// The failed request's reply is abandoned with that error; every other
// request of the same burst is still routed before Step returns.
//
// h is the handler; it is passed to every invocation and must not be nil.
func (rx *Receiver[H]) Step(ctx context.Context, h *H) error {
	if h == nil {
		panic("mailbox: nil handler")
	}
	if rx.torn {
		return ErrClosed
	}
	req, err := rx.next(ctx)
	if err == nil {
		switch req.mode() {
		case ModeSync:
			err = rx.runSync(h, req)
		case ModeAsync:
			err = rx.runAsync(h, req)
		default:
			err = rx.runBurst(h, req)
		}
	}
	if errors.Is(err, ErrClosed) {
		rx.logger.Info().
			Uint64("serial", uint64(rx.ch.serial)).
			Uint64("delivered", rx.stats.delivered.Load()).
			Log("mailbox: channel closed")
	}
	return err
}

// Run steps until the channel is closed, returning nil on clean shutdown
// and the first other error otherwise.
func (rx *Receiver[H]) Run(ctx context.Context, h *H) error {
	for {
		if err := rx.Step(ctx, h); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// next receives the next request: the requeue buffer first, then the
// queue, waiting while both are empty.
func (rx *Receiver[H]) next(ctx context.Context) (request[H], error) {
	if len(rx.requeue) > 0 {
		return rx.popRequeue(), nil
	}
	req, err := rx.ch.queue.pop(ctx)
	if err != nil {
		return nil, err
	}
	rx.stats.received.Add(1)
	return req, nil
}

// runSync invokes a Sync handler inline with exclusive access.
func (rx *Receiver[H]) runSync(h *H, req request[H]) error {
	rx.stats.sequential.Add(1)
	rx.access.Lock()
	rec := panics.Try(func() { req.invoke(h) })
	rx.access.Unlock()
	if rec != nil {
		err := newPanicError(req, rec)
		rx.fail(req, err)
		return err
	}
	rx.route(req)
	return nil
}

// runAsync steps an Async program to completion with exclusive access,
// backing off with iox.Backoff while its effect would block. Nothing else
// is received until it completes.
func (rx *Receiver[H]) runAsync(h *H, req request[H]) error {
	rx.stats.sequential.Add(1)
	rx.access.Lock()
	rec := panics.Try(func() {
		if req.start(h) {
			return
		}
		var bo iox.Backoff
		for {
			done, progressed := req.advance()
			if done {
				return
			}
			if progressed {
				bo.Reset()
			} else {
				bo.Wait()
			}
		}
	})
	rx.access.Unlock()
	if rec != nil {
		err := newPanicError(req, rec)
		rx.fail(req, err)
		return err
	}
	rx.route(req)
	return nil
}
