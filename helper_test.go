// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/mailbox"
	"golang.org/x/sync/errgroup"
)

// ledger is the handler used across tests. Sequential routes mutate it
// freely; concurrent routes only touch mu-guarded state.
type ledger struct {
	entries []string

	mu   sync.Mutex
	seen []string
}

func (l *ledger) note(s string) {
	l.mu.Lock()
	l.seen = append(l.seen, s)
	l.mu.Unlock()
}

func (l *ledger) notes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seen...)
}

var (
	appendEntry = mailbox.Sync("append", func(l *ledger, s string) int {
		l.entries = append(l.entries, s)
		l.note("append:" + s)
		return len(l.entries)
	})
	// Cont-world Bind defers the side effects until the program resumes.
	appendLater = mailbox.AsyncEff("append-later", func(l *ledger, s string) kont.Eff[int] {
		return mailbox.YieldThen(kont.Bind(kont.Pure(s), func(s string) kont.Eff[int] {
			l.entries = append(l.entries, s)
			l.note("append-later:" + s)
			return kont.Pure(len(l.entries))
		}))
	})
	sleepTask = mailbox.AsyncConcurrentEff("sleep-task", func(l *ledger, d time.Duration) kont.Eff[time.Duration] {
		return mailbox.SleepThen(d, kont.Bind(kont.Pure(d), func(d time.Duration) kont.Eff[time.Duration] {
			l.note("sleep-task:" + d.String())
			return kont.Pure(d)
		}))
	})
	sleepWorker = mailbox.SyncConcurrent("sleep-worker", func(l *ledger, d time.Duration) time.Duration {
		time.Sleep(d)
		l.note("sleep-worker:" + d.String())
		return d
	}, nil)
	count = mailbox.SyncConcurrent("count", func(l *ledger, _ struct{}) int {
		return len(l.entries)
	}, func(*ledger, struct{}) bool { return false })
)

var ledgerTable = mailbox.NewTable[ledger](appendEntry, appendLater, sleepTask, sleepWorker, count)

// serve runs rx in the background. Wait on the returned group for the
// result of Run.
func serve[H any](rx *mailbox.Receiver[H], h *H) *errgroup.Group {
	var g errgroup.Group
	g.Go(func() error {
		return rx.Run(context.Background(), h)
	})
	return &g
}

// waitAll waits for every reply, failing the test on any error.
func waitAll[R any](t *testing.T, replies ...*mailbox.Reply[R]) []R {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := make([]R, 0, len(replies))
	for i, r := range replies {
		v, err := r.Wait(ctx)
		if err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
		out = append(out, v)
	}
	return out
}

// mustSend sends msg on route r, failing the test on error.
func mustSend[H, M, R any](t *testing.T, r *mailbox.Route[H, M, R], tx *mailbox.Sender[H], msg M) *mailbox.Reply[R] {
	t.Helper()
	reply, err := r.Send(tx, msg)
	if err != nil {
		t.Fatalf("send %s: %v", r.Name(), err)
	}
	return reply
}

func pending[R any](r *mailbox.Reply[R]) bool {
	select {
	case <-r.Done():
		return false
	default:
		return true
	}
}
