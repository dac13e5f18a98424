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

// DefaultMaxQueueDepth, DefaultMaxFanIn, DefaultMaxFanOut and
// DefaultMaxInvokers are the builder defaults named in SPEC_FULL.md §1.3:
// a zero-value builder behaves like the teacher's zero-value
// NodeBuilder/PublisherBuilder, conservative rather than unbounded.
const (
	DefaultMaxQueueDepth = 1
	DefaultMaxFanIn      = 1
	DefaultMaxFanOut     = 1
	DefaultMaxInvokers   = 1
)

// SignalBuilder builds a Signal. It has no tunable options beyond its
// Label, since a Signal carries no payload and no queue.
type SignalBuilder interface {
	Build() (Signal, error)
}

// TopicBuilder accumulates options for a Topic[T] before Build.
//
// Method names follow the teacher's PublisherBuilder/SubscriberBuilder
// naming (UnableToDeliverStrategy, BufferSize) adapted to the option
// names spec.md §4.5 already specifies (queue_policy, max_queue_depth),
// per SPEC_FULL.md §4.
type TopicBuilder[T Payload] interface {
	// WithQueueDepth sets the per-subscriber queue depth. Must be >= 1;
	// Build returns a StateError if violated.
	WithQueueDepth(depth int) TopicBuilder[T]
	// WithQueuePolicy sets the backpressure policy applied when a
	// subscriber's queue is full.
	WithQueuePolicy(policy QueuePolicy) TopicBuilder[T]
	// WithMaxFanIn sets the maximum number of concurrent Publishers.
	WithMaxFanIn(n int) TopicBuilder[T]
	// WithMaxFanOut sets the maximum number of concurrent Subscribers.
	WithMaxFanOut(n int) TopicBuilder[T]
	// Build validates the accumulated options and creates the Topic.
	Build() (Topic[T], error)
}

// RpcBuilder accumulates options for an Rpc[Args, R] before Build.
type RpcBuilder[Args Payload, R any] interface {
	// WithQueueDepth sets the service's pending-request queue depth.
	WithQueueDepth(depth int) RpcBuilder[Args, R]
	// WithQueuePolicy sets the policy applied when the pending-request
	// queue is full.
	WithQueuePolicy(policy QueuePolicy) RpcBuilder[Args, R]
	// WithMaxInvokers sets the maximum number of concurrent Invokers
	// (the client-side fan, named max_invokers_client in spec.md §4.5).
	WithMaxInvokers(n int) RpcBuilder[Args, R]
	// WithMaxInvokees sets the maximum number of concurrent Invokees
	// (the service-side fan, named max_invokers_service in spec.md §4.5).
	WithMaxInvokees(n int) RpcBuilder[Args, R]
	// Build validates the accumulated options and creates the Rpc.
	Build() (Rpc[Args, R], error)
}
