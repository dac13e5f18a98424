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

package mwcom

import (
	"context"
	"time"
)

// Signal is a sticky, content-free latch: an Emitter sets it, any number
// of Collectors can observe and clear it. It carries no payload — only
// the fact that it was emitted at least once since the last reset.
type Signal interface {
	// Emitter returns a handle a producer uses to set the latch.
	Emitter() (SignalEmitter, error)
	// Collector returns a handle a consumer uses to observe and clear
	// the latch.
	Collector() (SignalCollector, error)
	// Close releases this primitive's resources. Implements io.Closer.
	Close() error
}

// SignalEmitter sets a Signal's latch.
type SignalEmitter interface {
	// Emit sets the latch, waking any Collector blocked in Wait or
	// WaitTimeout.
	Emit() error
	// Close detaches this emitter. The Signal itself survives until its
	// own Close.
	Close() error
}

// SignalCollector observes and clears a Signal's latch.
type SignalCollector interface {
	// Check reports whether the latch is set, without clearing it.
	Check() (bool, error)
	// CheckAndReset reports whether the latch was set and clears it
	// unconditionally.
	CheckAndReset() (bool, error)
	// Wait blocks until the latch is set. It does NOT clear the latch on
	// return — a subsequent Check immediately after Wait still observes
	// it set. This asymmetry with WaitTimeout is deliberate and
	// preserved from the reference transport's original behavior.
	Wait(ctx context.Context) error
	// WaitTimeout blocks until the latch is set or d elapses, returning
	// ErrTimeout in the latter case. Unlike Wait, a successful
	// WaitTimeout clears the latch before returning.
	WaitTimeout(ctx context.Context, d time.Duration) error
	// Close detaches this collector.
	Close() error
}
