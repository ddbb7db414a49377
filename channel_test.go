// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"context"
	"errors"
	"testing"

	"code.hybscloud.com/mailbox"
)

func TestSerialMonotonic(t *testing.T) {
	tx1, rx1 := mailbox.New(ledgerTable, nil)
	tx2, _ := mailbox.New(ledgerTable, nil)
	if tx1.Serial() != rx1.Serial() {
		t.Fatalf("pair serials differ: %d vs %d", tx1.Serial(), rx1.Serial())
	}
	if tx2.Serial() <= tx1.Serial() {
		t.Fatalf("serial not increasing: %d then %d", tx1.Serial(), tx2.Serial())
	}
	if tx1.Clone().Serial() != tx1.Serial() {
		t.Fatal("clone moved to another channel")
	}
}

func TestCloneKeepsChannelOpen(t *testing.T) {
	tx, rx := mailbox.New(ledgerTable, nil)
	other := tx.Clone()
	tx.Close()
	tx.Close() // idempotent

	if _, err := appendEntry.Send(tx, "closed"); !errors.Is(err, mailbox.ErrClosed) {
		t.Fatalf("Send on closed handle got %v, want ErrClosed", err)
	}
	r := mustSend(t, appendEntry, other, "A")
	other.Close()

	l := &ledger{}
	if err := rx.Run(context.Background(), l); err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitAll(t, r)
	if _, err := appendEntry.Send(other, "late"); !errors.Is(err, mailbox.ErrClosed) {
		t.Fatalf("Send after last close got %v, want ErrClosed", err)
	}
}

func TestCloneClosedPanics(t *testing.T) {
	tx, _ := mailbox.New(ledgerTable, nil)
	tx.Close()
	defer func() {
		if r := recover(); r != "mailbox: clone of closed sender" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	tx.Clone()
}

func TestTable(t *testing.T) {
	if ledgerTable.Len() != 5 {
		t.Fatalf("Len got %d, want 5", ledgerTable.Len())
	}
	if ledgerTable.Name(0) != "append" || ledgerTable.Mode(0) != mailbox.ModeSync {
		t.Fatalf("tag 0 got %s/%s", ledgerTable.Name(0), ledgerTable.Mode(0))
	}
	if ledgerTable.Name(3) != "sleep-worker" || ledgerTable.Mode(3) != mailbox.ModeSyncConcurrent {
		t.Fatalf("tag 3 got %s/%s", ledgerTable.Name(3), ledgerTable.Mode(3))
	}
	tx, _ := mailbox.New(ledgerTable, nil)
	if tx.Table() != ledgerTable {
		t.Fatal("sender table mismatch")
	}
}

func TestTableDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "mailbox: duplicate route append" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	mailbox.NewTable[ledger](appendEntry, count, appendEntry)
}

func TestRouteNilFunctionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "mailbox: nil handler function for route empty" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	mailbox.Sync[ledger, int, int]("empty", nil)
}

func TestRouteAccessors(t *testing.T) {
	if sleepTask.Name() != "sleep-task" || sleepTask.Mode() != mailbox.ModeAsyncConcurrent {
		t.Fatalf("got %s", sleepTask)
	}
	if got := sleepTask.String(); got != "sleep-task(async-concurrent)" {
		t.Fatalf("String got %q", got)
	}
}

func TestCloneRacingClose(t *testing.T) {
	for range 200 {
		tx, rx := mailbox.New(ledgerTable, nil)
		closed := make(chan struct{})
		go func() {
			tx.Close()
			close(closed)
		}()

		var clone *mailbox.Sender[ledger]
		func() {
			defer func() { recover() }()
			clone = tx.Clone()
		}()
		<-closed

		if clone == nil {
			continue
		}
		// a handle that was handed out keeps the channel open
		if _, err := appendEntry.Send(clone, "A"); err != nil {
			t.Fatalf("Send on cloned handle: %v", err)
		}
		clone.Close()
		if err := rx.Run(context.Background(), &ledger{}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
}
