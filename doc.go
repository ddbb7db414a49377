// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mailbox provides an in-process typed mailbox: many producers send
// typed requests to one handler and each awaits its own typed reply.
//
// A handler type H serves a closed set of routes. Each [Route] fixes the
// message type, the reply type and one of four handling modes:
//
//   - [ModeSync]: inline on the dispatch loop, exclusive access to the handler.
//   - [ModeAsync]: a cooperative program stepped to completion, exclusive access.
//   - [ModeSyncConcurrent]: shared access, inline or on a blocking worker as the route's predicate decides.
//   - [ModeAsyncConcurrent]: shared access, a cooperative program multiplexed with the rest of a burst.
//
// # Architecture
//
//   - Transport: an unbounded lock-free MPSC queue. [New] creates a [Sender] and [Receiver] pair.
//   - Dispatch: [Receiver.Step] processes one sequential request or one concurrent burst. A burst admits
//     every concurrent request available without waiting and ends when nothing is in flight; a sequential
//     request met while admitting is handled right after the burst, ahead of anything queued later.
//   - Offload: blocking workers run on a [github.com/sourcegraph/conc/pool] and post completions to a
//     bounded [code.hybscloud.com/lfq] queue. Worker failures surface as [*WorkerError].
//   - Effects: suspending handlers are [code.hybscloud.com/kont] programs over [Sleep], [Yield], [Await]
//     and [Poll], dispatched non-blockingly with [code.hybscloud.com/iox.ErrWouldBlock] as the not-ready signal.
//   - Replies: each request owns a single-use [Reply] slot. A slot abandoned by its producer is skipped
//     silently; a slot whose request can never be handled fails with [ErrAbandoned].
//
// Exclusive and shared access never overlap: the loop holds a read/write lock on the handler,
// exclusively for sequential invocations and shared for the whole of a burst.
//
// # API Topologies
//
//   - Routes: [Sync], [Async], [AsyncEff], [SyncConcurrent], [AsyncConcurrent], [AsyncConcurrentEff], bound by [NewTable].
//   - Producers: [Route.Send], [Route.Call], [Sender.Clone], [Sender.Close].
//   - Cont-world: [SleepThen], [YieldThen], [AwaitBind], [PollBind].
//   - Expr-world: [ExprSleepThen], [ExprYieldThen], [ExprAwaitBind], [ExprPollBind].
//   - Stepping: [NewTask] and [Task.Advance]; blocking evaluation via [Exec] and [ExecExpr].
//
// # Example
//
//	type counter struct{ n int }
//
//	var (
//		add  = mailbox.Sync("add", func(c *counter, d int) int { c.n += d; return c.n })
//		peek = mailbox.SyncConcurrent("peek", func(c *counter, _ struct{}) int { return c.n }, nil)
//	)
//
//	tx, rx := mailbox.New(mailbox.NewTable[counter](add, peek), nil)
//	go rx.Run(context.Background(), &counter{})
//	n, err := add.Call(ctx, tx, 2)
package mailbox
