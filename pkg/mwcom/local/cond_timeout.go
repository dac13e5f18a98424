// Copyright (c) 2024 Contributors to the Eclipse Foundation
//
// See the NOTICE file(s) distributed with this work for additional
// information regarding copyright ownership.
//
// This program and the accompanying materials are made available under the
// terms of the Apache Software License 2.0 which is available at
// https://www.apache.org/licenses/LICENSE-2.0, or the MIT license
// which is available at https://opensource.org/licenses/MIT.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package local

import (
	"sync"
	"time"
)

// waitWithTimeout waits on cnd for up to d, the way Rust's
// Condvar::wait_timeout does. sync.Cond has no built-in deadline, so a
// timer is armed to force a spurious wakeup; callers always re-check their
// own condition and remaining budget after this returns, exactly as they
// would after any other cnd.Wait spurious wakeup. Must be called with mu
// already locked; returns with mu locked, mirroring cnd.Wait's contract.
func waitWithTimeout(cnd *sync.Cond, mu *sync.Mutex, d time.Duration) {
	timer := time.AfterFunc(d, cnd.Broadcast)
	defer timer.Stop()
	cnd.Wait()
}

// waitClaim arbitrates between a background goroutine finishing a wait
// and the calling select's ctx.Done() branch giving up on it: whichever
// side calls tryClaim first wins the right to commit the operation's
// side effects (consuming a sample, marking a transaction consumed,
// clearing a latch). The loser must leave all shared state exactly as
// it found it, so a canceled call never silently finishes the work it
// was waiting for and never destroys a result meant for someone else.
type waitClaim struct {
	mu      sync.Mutex
	claimed bool
}

func (w *waitClaim) tryClaim() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.claimed {
		return false
	}
	w.claimed = true
	return true
}
