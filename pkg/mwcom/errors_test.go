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
	"testing"
)

func TestWrapErrorPreservesIs(t *testing.T) {
	wrapped := WrapError("Subscriber.Receive", ErrQueueEmpty)
	if !errors.Is(wrapped, ErrQueueEmpty) {
		t.Fatal("errors.Is must see through ContextualError to the sentinel")
	}
	if errors.Is(wrapped, ErrTimeout) {
		t.Fatal("errors.Is must not match an unrelated sentinel")
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("op", nil) != nil {
		t.Fatal("WrapError(op, nil) must return nil")
	}
}

func TestIsKind(t *testing.T) {
	wrapped := WrapError("Invoker.Send", ErrQueueFull)
	if !IsKind(wrapped, KindQueueFull) {
		t.Fatal("IsKind must match the wrapped Kind")
	}
	if IsKind(wrapped, KindFanError) {
		t.Fatal("IsKind must not match an unrelated Kind")
	}
}

func TestContextualErrorMessageIncludesOp(t *testing.T) {
	wrapped := WrapError("Topic.Publisher", ErrFanError)
	msg := wrapped.Error()
	if msg == "" || msg == ErrFanError.Error() {
		t.Fatalf("ContextualError.Error() = %q, want it to include the op", msg)
	}
}

func TestDoubleWrapStillUnwraps(t *testing.T) {
	inner := WrapError("inner-op", ErrStateError)
	outer := WrapError("outer-op", inner)
	if !errors.Is(outer, ErrStateError) {
		t.Fatal("nested ContextualError must still unwrap to the sentinel")
	}
}
