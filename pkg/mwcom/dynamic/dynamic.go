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

// Package dynamic implements the tagged-variant transport multiplexer
// sketched in spec.md §9 ("Dynamic transport selection"): a closed set of
// concrete mwcom.Adapter implementations, selected per-primitive by a
// caller-supplied key rather than wired up at compile time. It is
// mechanical rather than part of the core contract, which is why it
// wraps mwcom.Adapter instead of redefining it.
package dynamic

import (
	"sync"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

// Key identifies one of the adapters registered with a Multiplexer.
type Key string

// Multiplexer holds a closed set of named mwcom.Adapter instances and
// dispatches Signal construction to whichever one a caller selects. Only
// Signal is exposed here: Topic and Rpc are generic per spec.md's own
// constraint (see mwcom.Adapter's doc comment), so a dynamic multiplexer
// over them is a per-call chooser function at the caller site
// (Select(key).(*local.Adapter) then local.NewTopicBuilder[T]), not a
// method this package can express without reintroducing the same
// generic-method problem one layer up.
type Multiplexer struct {
	mu       sync.RWMutex
	adapters map[Key]mwcom.Adapter
}

// New creates an empty Multiplexer.
func New() *Multiplexer {
	return &Multiplexer{adapters: make(map[Key]mwcom.Adapter)}
}

// Register adds an adapter under key. Registering the same key twice
// replaces the previous adapter without closing it — the caller owns
// adapter lifetime.
func (m *Multiplexer) Register(key Key, adapter mwcom.Adapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapters[key] = adapter
}

// Select returns the adapter registered under key, or nil if none is.
func (m *Multiplexer) Select(key Key) mwcom.Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adapters[key]
}

// SignalBuilder dispatches to the adapter registered under key, failing
// with a StateError-kind error if key is not registered.
func (m *Multiplexer) SignalBuilder(key Key, label mwcom.Label) (mwcom.SignalBuilder, error) {
	a := m.Select(key)
	if a == nil {
		return nil, mwcom.WrapError("Multiplexer.SignalBuilder", mwcom.ErrStateError)
	}
	return a.SignalBuilder(label), nil
}

// Close closes every registered adapter, collecting the first error.
func (m *Multiplexer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, a := range m.adapters {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
