// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

var (
	// ErrClosed reports that the channel is closed: Send fails with it once
	// every Sender is closed or the Receiver is torn down, and Step returns it
	// once the queue is closed and fully drained (the clean shutdown path).
	ErrClosed = errors.New("mailbox: closed")

	// ErrUnknownRoute is returned by Send for a route outside the sender's table.
	ErrUnknownRoute = errors.New("mailbox: route not in table")

	// ErrAbandoned is returned by Reply.Wait when the slot settled without a
	// value: the receiver was torn down, the handler failed, or the producer
	// called Abandon.
	ErrAbandoned = errors.New("mailbox: reply abandoned")

	// ErrWorkerFailed is the kind of every *WorkerError.
	ErrWorkerFailed = errors.New("mailbox: blocking worker failed")

	// ErrHandlerPanicked is the kind of every *PanicError.
	ErrHandlerPanicked = errors.New("mailbox: handler panicked")
)

// WorkerError reports a blocking worker that did not complete normally.
// It is fatal to the burst that offloaded the invocation, and is returned by
// Receiver.Step once the rest of the burst has been routed.
type WorkerError struct {
	// Route names the route whose invocation failed.
	Route string
	Tag   Tag
	// Panic holds the recovered panic, or nil if the worker was aborted
	// via runtime.Goexit.
	Panic *panics.Recovered
}

// Aborted reports whether the worker exited without panicking.
func (e *WorkerError) Aborted() bool { return e.Panic == nil }

func (e *WorkerError) Error() string {
	if e.Panic == nil {
		return fmt.Sprintf("mailbox: blocking worker for %q aborted", e.Route)
	}
	return fmt.Sprintf("mailbox: blocking worker for %q panicked: %v", e.Route, e.Panic.Value)
}

// Unwrap returns ErrWorkerFailed and, for panics, the recovered panic as an error.
func (e *WorkerError) Unwrap() []error {
	if e.Panic == nil {
		return []error{ErrWorkerFailed}
	}
	return []error{ErrWorkerFailed, e.Panic.AsError()}
}

// PanicError reports a handler that panicked on the dispatch loop: a Sync
// handler, a blocking predicate, an inline SyncConcurrent call, or a step of
// a cooperative program.
type PanicError struct {
	Route string
	Tag   Tag
	Mode  Mode
	Panic *panics.Recovered
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("mailbox: %s handler %q panicked: %v", e.Mode, e.Route, e.Panic.Value)
}

// Unwrap returns ErrHandlerPanicked and the recovered panic as an error.
func (e *PanicError) Unwrap() []error {
	return []error{ErrHandlerPanicked, e.Panic.AsError()}
}

func newWorkerError[H any](req request[H], rec *panics.Recovered) *WorkerError {
	return &WorkerError{Route: req.name(), Tag: req.tag(), Panic: rec}
}

func newPanicError[H any](req request[H], rec *panics.Recovered) *PanicError {
	return &PanicError{Route: req.name(), Tag: req.tag(), Mode: req.mode(), Panic: rec}
}

// abandonedBy wraps cause so that it matches both ErrAbandoned and cause.
func abandonedBy(cause error) error {
	if cause == nil || cause == ErrAbandoned {
		return ErrAbandoned
	}
	return fmt.Errorf("%w: %w", ErrAbandoned, cause)
}
