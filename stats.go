// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import "code.hybscloud.com/atomix"

// Stats is a snapshot of a receiver's counters.
type Stats struct {
	Received   uint64 // requests dequeued, requeued ones counted once
	Sequential uint64 // Sync and Async invocations
	Bursts     uint64
	Concurrent uint64 // invocations admitted into bursts
	Offloaded  uint64 // SyncConcurrent invocations run on a blocking worker
	Inline     uint64 // SyncConcurrent invocations whose predicate reported non-blocking
	Delivered  uint64
	Discarded  uint64 // replies dropped because the slot was already settled
	Failures   uint64 // handler panics and worker failures
}

type counters struct {
	received   atomix.Uint64
	sequential atomix.Uint64
	bursts     atomix.Uint64
	concurrent atomix.Uint64
	offloaded  atomix.Uint64
	inline     atomix.Uint64
	delivered  atomix.Uint64
	discarded  atomix.Uint64
	failures   atomix.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:   c.received.Load(),
		Sequential: c.sequential.Load(),
		Bursts:     c.bursts.Load(),
		Concurrent: c.concurrent.Load(),
		Offloaded:  c.offloaded.Load(),
		Inline:     c.inline.Load(),
		Delivered:  c.delivered.Load(),
		Discarded:  c.discarded.Load(),
		Failures:   c.failures.Load(),
	}
}
