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
	"fmt"
	"math"
	"time"
)

// TxID is a monotonic per-invoker transaction counter, supplementing the
// distilled spec with original_source's Id type: a sized handle with a
// representable "unset" sentinel, rather than a bare uint64 that conflates
// zero-the-first-transaction with zero-the-zero-value.
type TxID uint64

// TxIDInvalid is the sentinel value no real transaction ever takes.
const TxIDInvalid TxID = math.MaxUint64

// String renders a TxID the way original_source's Id::Display does:
// "#N" when set, "#invalid" otherwise.
func (id TxID) String() string {
	if id == TxIDInvalid {
		return "#invalid"
	}
	return fmt.Sprintf("#%d", uint64(id))
}

// IsValid reports whether id is not TxIDInvalid.
func (id TxID) IsValid() bool {
	return id != TxIDInvalid
}

// Request is a loaned, writable argument buffer not yet sent. AsMutPtr/
// AssumeInit mirror SampleMut's pair (see topic.go) for the Invoker side
// of the loan contract.
type Request[Args Payload] interface {
	// Write stores args into the loan.
	Write(args Args)
	// AsMutPtr returns a pointer into the loan's own storage for
	// in-place construction of Args.
	AsMutPtr() *Args
	// AssumeInit transitions the loan to Mutable after the caller has
	// constructed a value in place via AsMutPtr, without copying
	// through Write.
	AssumeInit()
	// State reports the loan's lifecycle state.
	State() SampleState
}

// PendingRequest is the invoker-side handle to a transaction awaiting a
// response. Each transaction's result may be consumed exactly once: a
// second TryReceive/Receive/ReceiveTimeout call returns
// ErrResponseConsumed, per spec.md §4.4 and testable property 7.
type PendingRequest[R any] interface {
	// ID returns this transaction's TxID.
	ID() TxID
	// TryReceive returns the result without blocking, or ErrQueueEmpty
	// if the invokee has not yet executed the request.
	TryReceive() (R, error)
	// Receive blocks until the result is ready or ctx is done.
	Receive(ctx context.Context) (R, error)
	// ReceiveTimeout blocks until the result is ready or d elapses.
	ReceiveTimeout(ctx context.Context, d time.Duration) (R, error)
}

// Invoker is the client side of an Rpc.
type Invoker[Args Payload, R any] interface {
	// Loan acquires a writable argument buffer.
	Loan() (Request[Args], error)
	// Invoke sends req to the service and blocks until a result arrives
	// or ctx is done. It is a convenience over Send + PendingRequest.Receive.
	Invoke(ctx context.Context, req Request[Args]) (R, error)
	// InvokeValue loans, writes and invokes a value in one call.
	InvokeValue(ctx context.Context, args Args) (R, error)
	// Send dispatches req to the service without waiting for a result,
	// returning a PendingRequest the caller can poll or await later.
	// Fails with ErrQueueFull if the service's pending-request queue is
	// at max_queue_depth.
	Send(req Request[Args]) (PendingRequest[R], error)
	// Close detaches this invoker.
	Close() error
}

// PendingExecution is the invokee-side handle to a received request
// awaiting execution.
type PendingExecution[Args Payload] interface {
	// ID returns this transaction's TxID.
	ID() TxID
	// Args returns the received argument value.
	Args() Args
}

// Invokee is the service side of an Rpc.
type Invokee[Args Payload, R any] interface {
	// TryReceive returns the next pending execution without blocking, or
	// ErrQueueEmpty if none is queued.
	TryReceive() (PendingExecution[Args], error)
	// Receive blocks until a request is available or ctx is done.
	Receive(ctx context.Context) (PendingExecution[Args], error)
	// Respond delivers result for the transaction identified by exec,
	// waking the invoker's PendingRequest.
	Respond(exec PendingExecution[Args], result R) error
	// ReceiveAndExecute is the dispatcher-loop convenience: it blocks
	// for the next request, invokes fn with its arguments and responds
	// with fn's return value in one call, the shape spec.md §4.4 and
	// §9 name explicitly. fn is a plain value, never a type parameter of
	// Rpc itself — see SPEC_FULL.md §9's design note on why the service
	// function is not baked into the Rpc type.
	ReceiveAndExecute(ctx context.Context, fn func(args Args) R) error
	// Close detaches this invokee.
	Close() error
}

// Rpc is a request/response primitive between a bounded set of Invokers
// and a bounded set of Invokees.
type Rpc[Args Payload, R any] interface {
	// Invoker creates a new Invoker, failing with ErrFanError past the
	// configured max invoker count.
	Invoker() (Invoker[Args, R], error)
	// Invokee creates a new Invokee, failing with ErrFanError past the
	// configured max invokee count.
	Invokee() (Invokee[Args, R], error)
	// Close releases this primitive's resources.
	Close() error
}
