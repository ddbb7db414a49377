// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
	"github.com/joeycumines/logiface"
)

// Serial identifies a channel. Each call to New assigns the next value.
type Serial = uint32

var serials atomix.Uint32

// channel is the state shared by every Sender of a pair and its Receiver.
type channel[H any] struct {
	table   *Table[H]
	queue   *queue[request[H]]
	senders atomix.Uint32
	serial  Serial
}

// Sender is a producer handle. It is safe for concurrent use; Clone it to
// hand out independently closable handles. The channel stops accepting
// requests once every handle has been closed.
type Sender[H any] struct {
	ch     *channel[H]
	closed atomix.Uint32
}

// Receiver is the consumer handle. It is owned by the goroutine driving
// Step or Run and must not be used concurrently.
type Receiver[H any] struct {
	ch      *channel[H]
	requeue []request[H]

	// access guards the handler: held exclusively by sequential
	// invocations and shared for the duration of a burst.
	access sync.RWMutex

	completions lfq.Queue[completion[H]]
	logger      *logiface.Logger[logiface.Event]
	stats       counters
	torn        bool
}

// New creates a connected sender and receiver for handler type H, serving
// the routes of table. cfg may be nil.
func New[H any](table *Table[H], cfg *Config) (*Sender[H], *Receiver[H]) {
	if table == nil {
		panic("mailbox: nil table")
	}
	ch := &channel[H]{
		table:  table,
		queue:  newQueue[request[H]](),
		serial: serials.Add(1),
	}
	ch.senders.Add(1)
	rx := &Receiver[H]{
		ch:          ch,
		completions: lfq.BuildMPSC[completion[H]](lfq.New(cfg.completionCapacity()).SingleConsumer().Compact()),
		logger:      cfg.logger(),
	}
	return &Sender[H]{ch: ch}, rx
}

// Serial returns the serial of the channel tx sends on.
func (tx *Sender[H]) Serial() Serial { return tx.ch.serial }

// Table returns the routing table of the channel.
func (tx *Sender[H]) Table() *Table[H] { return tx.ch.table }

// Clone returns a new handle on the same channel. Clone panics if tx has
// been closed, including by a Close racing with the Clone.
func (tx *Sender[H]) Clone() *Sender[H] {
	for {
		n := tx.ch.senders.Load()
		if n == 0 || tx.closed.Load() != 0 {
			panic("mailbox: clone of closed sender")
		}
		// never revive a count that reached zero: the queue is closed then
		if tx.ch.senders.CompareAndSwap(n, n+1) {
			return &Sender[H]{ch: tx.ch}
		}
	}
}

// Close releases this handle. Closing the last open handle closes the
// channel for sending; requests already queued are still processed, after
// which Step reports ErrClosed. Close is idempotent.
func (tx *Sender[H]) Close() {
	if tx.closed.Add(1) != 1 {
		return
	}
	if tx.ch.senders.Add(^uint32(0)) == 0 {
		tx.ch.queue.close()
	}
}

// Serial returns the serial of the channel rx receives from.
func (rx *Receiver[H]) Serial() Serial { return rx.ch.serial }

// Stats returns a snapshot of the receiver's counters. Safe for concurrent use.
func (rx *Receiver[H]) Stats() Stats { return rx.stats.snapshot() }

// Close tears the receiver down: the channel stops accepting requests and
// every request still queued or requeued has its reply abandoned with
// ErrClosed. Close must not be called concurrently with Step or Run.
func (rx *Receiver[H]) Close() {
	if rx.torn {
		return
	}
	rx.torn = true
	rx.ch.queue.close()
	n := 0
	for len(rx.requeue) > 0 {
		rx.popRequeue().abandon(ErrClosed)
		n++
	}
	for {
		req, st := rx.ch.queue.tryPop()
		if st != popOK {
			break
		}
		req.abandon(ErrClosed)
		n++
	}
	rx.logger.Info().
		Uint64("serial", uint64(rx.ch.serial)).
		Int("abandoned", n).
		Log("mailbox: receiver closed")
}

func (rx *Receiver[H]) popRequeue() request[H] {
	last := len(rx.requeue) - 1
	req := rx.requeue[last]
	rx.requeue[last] = nil
	rx.requeue = rx.requeue[:last]
	return req
}
