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

// AdapterInfo is the static identity a Transport Adapter reports, per
// spec.md §4.1: a name, a vendor and a version, queried once at startup
// rather than per-primitive.
type AdapterInfo struct {
	Name    string
	Vendor  string
	Version string
}

// Adapter is the factory boundary every transport implements, per
// spec.md §4.1. Its non-generic surface — identity and Signal, which
// carries no payload type — lives directly on this interface.
//
// TopicBuilder and RpcBuilder are generic over their payload types, and
// Go methods cannot themselves introduce new type parameters; a single
// Adapter.TopicBuilder[T](...) method is not expressible. Each concrete
// adapter package instead exports parallel package-level generic
// functions with the signature
//
//	func NewTopicBuilder[T mwcom.Payload](a *Adapter, label mwcom.Label) mwcom.TopicBuilder[T]
//	func NewRpcBuilder[Args mwcom.Payload, R any](a *Adapter, label mwcom.Label) mwcom.RpcBuilder[Args, R]
//
// constrained to that adapter's own concrete Adapter type rather than
// this interface, so callers still get full generic type inference. See
// pkg/mwcom/local for the reference implementation of this convention.
type Adapter interface {
	// Info returns this adapter's static configuration.
	Info() AdapterInfo
	// SignalBuilder starts building a Signal identified by label.
	SignalBuilder(label Label) SignalBuilder
	// Close releases all resources held by the adapter, including every
	// primitive it created that the caller has not already closed.
	Close() error
}
