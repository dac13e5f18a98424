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
	"context"
	"sync"
	"time"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

// signalState is the shared, reference-counted state of a Signal: one
// mutex, one condition variable and one boolean latch, exactly the triple
// original_source/qor-com/src/adapter/local/signal.rs builds LocalSignal
// around (Mutex<bool>, Condvar).
type signalState struct {
	mu  sync.Mutex
	cnd *sync.Cond
	set bool
}

func newSignalState() *signalState {
	s := &signalState{}
	s.cnd = sync.NewCond(&s.mu)
	return s
}

type signal struct {
	label mwcom.Label
	state *signalState
}

var _ mwcom.Signal = (*signal)(nil)

func (s *signal) Emitter() (mwcom.SignalEmitter, error) {
	return &signalEmitter{state: s.state}, nil
}

func (s *signal) Collector() (mwcom.SignalCollector, error) {
	return &signalCollector{state: s.state}, nil
}

func (s *signal) Close() error {
	return nil
}

type signalEmitter struct {
	state *signalState
}

var _ mwcom.SignalEmitter = (*signalEmitter)(nil)

// Emit sets the latch and wakes every waiter, mirroring LocalSignal::emit.
func (e *signalEmitter) Emit() error {
	e.state.mu.Lock()
	e.state.set = true
	e.state.mu.Unlock()
	e.state.cnd.Broadcast()
	return nil
}

func (e *signalEmitter) Close() error {
	return nil
}

type signalCollector struct {
	state *signalState
}

var _ mwcom.SignalCollector = (*signalCollector)(nil)

func (c *signalCollector) Check() (bool, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.set, nil
}

func (c *signalCollector) CheckAndReset() (bool, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	result := c.state.set
	c.state.set = false
	return result, nil
}

// Wait blocks until the latch is set. It intentionally does not clear the
// latch, matching LocalSignal::wait: a Check immediately afterward still
// observes it set. See signalCollector.WaitTimeout for the asymmetric
// counterpart that does reset on success.
func (c *signalCollector) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.state.mu.Lock()
		for !c.state.set {
			c.state.cnd.Wait()
		}
		c.state.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// sync.Cond has no cancellable wait; the goroutine above leaks
		// until the next Emit wakes it. This mirrors the native
		// condition-variable wait the reference transport uses, which
		// is likewise not cancellable mid-wait.
		return ctx.Err()
	}
}

// WaitTimeout blocks until the latch is set or d elapses. Unlike Wait, a
// successful WaitTimeout clears the latch, matching LocalSignal::wait_timeout.
func (c *signalCollector) WaitTimeout(ctx context.Context, d time.Duration) error {
	type result struct {
		timedOut bool
	}
	var claim waitClaim
	resCh := make(chan result, 1)
	deadline := time.Now().Add(d)

	go func() {
		c.state.mu.Lock()
		for !c.state.set {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				c.state.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{timedOut: true}
				}
				return
			}
			waitWithTimeout(c.state.cnd, &c.state.mu, remaining)
		}
		c.state.mu.Unlock()

		// The latch is only cleared if this goroutine wins the race
		// against a concurrent ctx.Done(): a caller that has already
		// abandoned the wait must not see its cancellation silently
		// clear a latch another caller is relying on.
		if !claim.tryClaim() {
			return
		}
		c.state.mu.Lock()
		c.state.set = false
		c.state.mu.Unlock()
		resCh <- result{timedOut: false}
	}()

	select {
	case r := <-resCh:
		if r.timedOut {
			return mwcom.WrapError("Collector.WaitTimeout", mwcom.ErrTimeout)
		}
		return nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			// The goroutine already won the race and is publishing its
			// outcome; wait for it so the result isn't dropped.
			r := <-resCh
			if r.timedOut {
				return mwcom.WrapError("Collector.WaitTimeout", mwcom.ErrTimeout)
			}
			return nil
		}
		return ctx.Err()
	}
}

func (c *signalCollector) Close() error {
	return nil
}

type signalBuilder struct {
	adapter *Adapter
	label   mwcom.Label
}

var _ mwcom.SignalBuilder = (*signalBuilder)(nil)

func (b *signalBuilder) Build() (mwcom.Signal, error) {
	if err := b.adapter.checkOpen(); err != nil {
		return nil, mwcom.WrapError("SignalBuilder.Build", err)
	}
	s := &signal{label: b.label, state: newSignalState()}
	b.adapter.track(s)
	return s, nil
}
