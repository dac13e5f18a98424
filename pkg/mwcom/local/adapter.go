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

// Package local is the in-process reference Transport Adapter: every
// primitive it creates lives entirely in this process's memory, backed by
// sync.Mutex and sync.Cond, with no serialization and no cross-process
// visibility. It is the transport spec.md §2 calls out as the one
// reference implementation the core ships with.
package local

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

// Adapter is the local, in-process Transport Adapter. The zero value is
// not usable; construct with New.
type Adapter struct {
	id        uuid.UUID
	log       zerolog.Logger
	mu        sync.Mutex
	closed    bool
	resources []io.Closer
}

var _ mwcom.Adapter = (*Adapter)(nil)

// Option configures an Adapter at construction time, following the
// teacher's builder-option pattern even though Adapter itself has no
// multi-step builder — there's exactly one construction-time knob so far.
type Option func(*Adapter)

// WithLogger swaps the adapter's zerolog.Logger. The default is
// zerolog.Nop(), matching SPEC_FULL.md §1.1.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// New creates a local Adapter. Each Adapter gets a fresh random identity,
// used only for log correlation — it has no role in the Tag/Label wire
// identity scheme of spec.md §6.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		id:  uuid.New(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With().Str("adapter_id", a.id.String()).Logger()
	return a
}

// Info implements mwcom.Adapter.
func (a *Adapter) Info() mwcom.AdapterInfo {
	return mwcom.AdapterInfo{
		Name:    "local",
		Vendor:  "eclipse-score",
		Version: "0.1.0",
	}
}

// SignalBuilder implements mwcom.Adapter.
func (a *Adapter) SignalBuilder(label mwcom.Label) mwcom.SignalBuilder {
	return &signalBuilder{adapter: a, label: label}
}

// checkOpen reports ErrStateError once the adapter has been closed,
// rejecting any further primitive construction.
func (a *Adapter) checkOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return mwcom.ErrStateError
	}
	return nil
}

// track registers a primitive created by one of this adapter's builders
// so Close can cascade to it later. Builders call this after a
// successful Build, alongside checkOpen.
func (a *Adapter) track(c io.Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resources = append(a.resources, c)
}

// Close implements mwcom.Adapter: it closes every primitive this adapter
// created that the caller has not already closed, and rejects any
// builder's Build called afterward with ErrStateError. A primitive's own
// Close is idempotent against being called twice (once here, once by the
// caller), so order between the two does not matter.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	resources := a.resources
	a.resources = nil
	a.mu.Unlock()

	var firstErr error
	for _, r := range resources {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
