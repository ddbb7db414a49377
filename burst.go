// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// burst is the pending invocation set of one concurrent burst. It is
// created empty for every burst and discarded when the burst exits.
type burst[H any] struct {
	rx      *Receiver[H]
	h       *H
	workers *pool.Pool

	// ready holds results that are already available: SyncConcurrent
	// invocations run inline and programs that finished without suspending.
	ready []request[H]
	// offloaded counts worker invocations whose completion is not yet dequeued.
	offloaded int
	tasks     []request[H]

	failure      error
	disconnected bool
}

// runBurst handles seed and every concurrent request that can be received
// without waiting, with shared access to h. It returns once nothing is in
// flight.
//
// A sequential request met while draining is pushed to the requeue buffer
// and ends admission. The first handler failure is returned after the rest
// of the burst has been routed; otherwise ErrClosed is returned if the
// queue was found closed and drained, so the caller stops stepping.
func (rx *Receiver[H]) runBurst(h *H, seed request[H]) error {
	rx.access.RLock()
	defer rx.access.RUnlock()

	b := &burst[H]{rx: rx, h: h, workers: pool.New()}
	defer b.workers.Wait()

	start := time.Now()
	rx.stats.bursts.Add(1)
	b.admit(seed)
	admitted := 1 + b.drain()

	rx.logger.Debug().
		Int("admitted", admitted).
		Int("offloaded", b.offloaded).
		Int("tasks", len(b.tasks)).
		Bool("requeued", len(rx.requeue) > 0).
		Log("mailbox: burst started")

	fairWait(offloadSet[H]{b}, taskSet[H]{b})

	rx.logger.Debug().
		Int("admitted", admitted).
		Dur("elapsed", time.Since(start)).
		Log("mailbox: burst finished")

	if b.failure != nil {
		return b.failure
	}
	if b.disconnected {
		return ErrClosed
	}
	return nil
}

// drain admits concurrent requests until the queue is empty or a sequential
// request is met. It never waits.
func (b *burst[H]) drain() int {
	n := 0
	for {
		req, st := b.rx.ch.queue.tryPop()
		switch st {
		case popEmpty:
			return n
		case popClosed:
			b.disconnected = true
			return n
		}
		b.rx.stats.received.Add(1)
		if !req.mode().Concurrent() {
			b.rx.requeue = append(b.rx.requeue, req)
			return n
		}
		b.admit(req)
		n++
	}
}

// admit starts the invocation of a concurrent request.
func (b *burst[H]) admit(req request[H]) {
	b.rx.stats.concurrent.Add(1)
	if req.mode() == ModeAsyncConcurrent {
		var done bool
		if rec := panics.Try(func() { done = req.start(b.h) }); rec != nil {
			b.panicked(req, rec)
			return
		}
		if done {
			b.ready = append(b.ready, req)
			return
		}
		b.tasks = append(b.tasks, req)
		return
	}

	blocking := true
	rec := panics.Try(func() {
		if blocking = req.blocking(b.h); !blocking {
			req.invoke(b.h)
		}
	})
	if rec != nil {
		b.panicked(req, rec)
		return
	}
	if !blocking {
		b.rx.stats.inline.Add(1)
		b.ready = append(b.ready, req)
		return
	}
	b.rx.stats.offloaded.Add(1)
	b.offloaded++
	b.workers.Go(func() { b.rx.work(b.h, req) })
}

func (b *burst[H]) panicked(req request[H], rec *panics.Recovered) {
	b.failed(req, newPanicError(req, rec))
}

func (b *burst[H]) failed(req request[H], err error) {
	b.rx.fail(req, err)
	if b.failure == nil {
		b.failure = err
	}
}

// offloadSet is the blocking subset of a burst: inline results and
// worker completions.
type offloadSet[H any] struct{ *burst[H] }

func (s offloadSet[H]) pending() bool {
	return len(s.ready) > 0 || s.offloaded > 0
}

func (s offloadSet[H]) poll() bool {
	progressed := len(s.ready) > 0
	for _, req := range s.ready {
		s.rx.route(req)
	}
	clear(s.ready)
	s.ready = s.ready[:0]
	for s.offloaded > 0 {
		c, err := s.rx.completions.Dequeue()
		if err != nil {
			break
		}
		s.offloaded--
		progressed = true
		if c.failure != nil {
			s.failed(c.req, c.failure)
			continue
		}
		s.rx.route(c.req)
	}
	return progressed
}

// taskSet is the cooperative subset of a burst.
type taskSet[H any] struct{ *burst[H] }

func (s taskSet[H]) pending() bool {
	return len(s.tasks) > 0
}

func (s taskSet[H]) poll() bool {
	progressed := false
	live := s.tasks[:0]
	for _, req := range s.tasks {
		var done, moved bool
		if rec := panics.Try(func() { done, moved = req.advance() }); rec != nil {
			s.panicked(req, rec)
			progressed = true
			continue
		}
		if moved {
			progressed = true
		}
		if done {
			s.rx.route(req)
			continue
		}
		live = append(live, req)
	}
	clear(s.tasks[len(live):])
	s.tasks = live
	return progressed
}
