// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import "code.hybscloud.com/iox"

// completionSource is one family of in-flight invocations in a burst.
// poll services whatever has completed without blocking; pending reports
// whether anything is still in flight.
type completionSource interface {
	poll() (progressed bool)
	pending() bool
}

// fairWait services sources on the calling goroutine until none has
// anything pending. The source polled first rotates every round so that
// neither family is starved by the other. Backs off with iox.Backoff when
// a whole round made no progress.
func fairWait(sources ...completionSource) {
	var bo iox.Backoff
	first := 0
	for {
		progress := false
		busy := false
		for i := range sources {
			s := sources[(first+i)%len(sources)]
			if !s.pending() {
				continue
			}
			busy = true
			if s.poll() {
				progress = true
			}
		}
		if !busy {
			return
		}
		first = (first + 1) % len(sources)
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
}
