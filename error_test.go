// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"code.hybscloud.com/mailbox"
	"github.com/sourcegraph/conc/panics"
)

func TestWorkerErrorMessage(t *testing.T) {
	rec := panics.Try(func() { panic("boom") })
	err := &mailbox.WorkerError{Route: "resize", Tag: 3, Panic: rec}
	if err.Aborted() {
		t.Fatal("panicked worker reported as aborted")
	}
	if !strings.Contains(err.Error(), `"resize" panicked: boom`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, mailbox.ErrWorkerFailed) {
		t.Fatal("WorkerError should be ErrWorkerFailed")
	}

	aborted := &mailbox.WorkerError{Route: "resize"}
	if !aborted.Aborted() {
		t.Fatal("worker without panic should report aborted")
	}
	if !strings.Contains(aborted.Error(), "aborted") {
		t.Fatalf("unexpected message %q", aborted.Error())
	}
	if !errors.Is(aborted, mailbox.ErrWorkerFailed) {
		t.Fatal("aborted WorkerError should be ErrWorkerFailed")
	}
}

func TestWorkerErrorUnwrapsPanicError(t *testing.T) {
	rec := panics.Try(func() { panic(io.ErrUnexpectedEOF) })
	err := &mailbox.WorkerError{Route: "read", Panic: rec}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("WorkerError should unwrap to the panic value: %v", err)
	}
}

func TestPanicErrorMessage(t *testing.T) {
	rec := panics.Try(func() { panic("bad state") })
	err := &mailbox.PanicError{Route: "apply", Mode: mailbox.ModeAsync, Panic: rec}
	if want := `mailbox: async handler "apply" panicked: bad state`; err.Error() != want {
		t.Fatalf("message got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, mailbox.ErrHandlerPanicked) || errors.Is(err, mailbox.ErrWorkerFailed) {
		t.Fatalf("PanicError kind wrong: %v", err)
	}
}

func TestUnknownRoute(t *testing.T) {
	stray := mailbox.Sync("stray", func(*ledger, int) int { return 0 })
	tx, _ := mailbox.New(ledgerTable, nil)

	r, err := stray.Send(tx, 1)
	if !errors.Is(err, mailbox.ErrUnknownRoute) {
		t.Fatalf("Send got %v, want ErrUnknownRoute", err)
	}
	if r != nil {
		t.Fatal("rejected send returned a reply")
	}
	if !strings.Contains(err.Error(), "stray") {
		t.Fatalf("error %q does not name the route", err)
	}
}

func TestModeString(t *testing.T) {
	cases := []struct {
		mode       mailbox.Mode
		name       string
		concurrent bool
		suspending bool
	}{
		{mailbox.ModeSync, "sync", false, false},
		{mailbox.ModeAsync, "async", false, true},
		{mailbox.ModeSyncConcurrent, "sync-concurrent", true, false},
		{mailbox.ModeAsyncConcurrent, "async-concurrent", true, true},
		{mailbox.Mode(9), "unknown", false, false},
	}
	for _, c := range cases {
		if c.mode.String() != c.name || c.mode.Concurrent() != c.concurrent || c.mode.Suspending() != c.suspending {
			t.Errorf("mode %d: got %s/%v/%v", c.mode, c.mode, c.mode.Concurrent(), c.mode.Suspending())
		}
	}
}
