// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"github.com/joeycumines/logiface"
)

// defaultCompletionCapacity bounds the blocking-worker completion queue.
// Workers retry with backoff while it is full, so it limits buffering,
// not the number of in-flight invocations.
const defaultCompletionCapacity = 256

// minCompletionCapacity is the smallest capacity lfq accepts.
const minCompletionCapacity = 2

// Config tunes a channel. A nil *Config is valid and uses the defaults.
type Config struct {
	// CompletionCapacity is the capacity of the queue blocking workers post
	// their completions to. Defaults to 256 if 0 or negative; values below 2
	// are raised to 2.
	CompletionCapacity int

	// Logger receives dispatch loop events: bursts at debug, handler and
	// worker failures at warning, shutdown at info. Defaults to nil, which
	// disables logging.
	Logger *logiface.Logger[logiface.Event]
}

func (c *Config) completionCapacity() int {
	if c == nil || c.CompletionCapacity <= 0 {
		return defaultCompletionCapacity
	}
	return max(c.CompletionCapacity, minCompletionCapacity)
}

func (c *Config) logger() *logiface.Logger[logiface.Event] {
	if c == nil {
		return nil
	}
	return c.Logger
}
