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
	"errors"
	"fmt"
)

// Kind is the closed set of failure conditions the core can surface. No
// error in this package carries a dynamic message beyond its Kind and the
// operation that produced it — callers pattern-match on Kind, not on a
// formatted string.
type Kind int

const (
	// KindLockError signals an internal mutex failure. Fatal: the
	// process's invariants are compromised and the caller should not
	// retry the handle that produced it.
	KindLockError Kind = iota
	// KindTimeout signals a timed operation reached its deadline.
	KindTimeout
	// KindQueueEmpty signals a non-blocking receive found nothing.
	KindQueueEmpty
	// KindQueueFull signals a bounded queue rejected under ErrorOnFull.
	KindQueueFull
	// KindFanError signals too many publishers, subscribers, or invokers
	// were requested for the configured bound.
	KindFanError
	// KindStateError signals the operation was issued against a detached
	// or closed peer.
	KindStateError
	// KindResponseConsumed signals an Rpc result was read twice.
	KindResponseConsumed
)

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case KindLockError:
		return "LockError"
	case KindTimeout:
		return "Timeout"
	case KindQueueEmpty:
		return "QueueEmpty"
	case KindQueueFull:
		return "QueueFull"
	case KindFanError:
		return "FanError"
	case KindStateError:
		return "StateError"
	case KindResponseConsumed:
		return "ResponseConsumed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type carried by every failing operation in
// mwcom and mwcom/local. It is comparable by Kind via errors.Is.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	return e.Kind.String()
}

// Is implements errors.Is support: two *Error values match if their Kind
// matches, regardless of identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for the seven kinds of spec.md §6. Use errors.Is to check
// for these, the same way the teacher's errors.go exposes sentinel values
// for errors.Is/errors.As.
var (
	ErrLockError        = &Error{Kind: KindLockError}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrQueueEmpty       = &Error{Kind: KindQueueEmpty}
	ErrQueueFull        = &Error{Kind: KindQueueFull}
	ErrFanError         = &Error{Kind: KindFanError}
	ErrStateError       = &Error{Kind: KindStateError}
	ErrResponseConsumed = &Error{Kind: KindResponseConsumed}
)

// ContextualError wraps an error with the operation that failed. It
// implements Unwrap so errors.Is/errors.As see through it to the sentinel
// Kind, mirroring the teacher's ContextualError/WrapError pair.
type ContextualError struct {
	Op  string
	Err error
}

func (e *ContextualError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContextualError) Unwrap() error {
	return e.Err
}

// WrapError wraps err with operation context. Returns nil if err is nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ContextualError{Op: op, Err: err}
}

// IsKind reports whether err is, or wraps, an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
