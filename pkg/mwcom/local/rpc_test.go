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
	"errors"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

type thresholdArgs struct {
	X int
}

func (thresholdArgs) TypeTag() mwcom.Tag {
	return mwcom.NewTag([8]byte{'a', 'r', 'g', 's'})
}

func TestRpcInvokeValueRoundTrip(t *testing.T) {
	adapter := New()
	rpc, err := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("threshold")).
		WithQueueDepth(4).
		WithMaxInvokees(1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	invoker, err := rpc.Invoker()
	if err != nil {
		t.Fatalf("Invoker: %v", err)
	}
	invokee, err := rpc.Invokee()
	if err != nil {
		t.Fatalf("Invokee: %v", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		return invokee.ReceiveAndExecute(context.Background(), func(args thresholdArgs) bool {
			return args.X > 42
		})
	})

	result, err := invoker.InvokeValue(context.Background(), thresholdArgs{X: 100})
	if err != nil {
		t.Fatalf("InvokeValue: %v", err)
	}
	if !result {
		t.Fatal("InvokeValue(100) through x>42 must be true")
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("ReceiveAndExecute: %v", err)
	}
}

func TestRpcDoubleReceiveIsResponseConsumed(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invoker, _ := rpc.Invoker()
	invokee, _ := rpc.Invokee()

	req, _ := invoker.Loan()
	req.Write(thresholdArgs{X: 1})
	pending, err := invoker.Send(req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	exec, err := invokee.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := invokee.Respond(exec, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if _, err := pending.Receive(context.Background()); err != nil {
		t.Fatalf("first Receive: %v", err)
	}
	_, err = pending.Receive(context.Background())
	if !errors.Is(err, mwcom.ErrResponseConsumed) {
		t.Fatalf("second Receive must return ErrResponseConsumed, got %v", err)
	}

	_, err = pending.TryReceive()
	if !errors.Is(err, mwcom.ErrResponseConsumed) {
		t.Fatalf("TryReceive after consumption must also return ErrResponseConsumed, got %v", err)
	}
}

func TestRpcTryReceiveBeforeRespondIsQueueEmpty(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invoker, _ := rpc.Invoker()

	req, _ := invoker.Loan()
	req.Write(thresholdArgs{X: 1})
	pending, err := invoker.Send(req)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = pending.TryReceive()
	if !errors.Is(err, mwcom.ErrQueueEmpty) {
		t.Fatalf("TryReceive before Respond must return ErrQueueEmpty, got %v", err)
	}
}

func TestRpcQueueFullUnderErrorOnFull(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).
		WithQueueDepth(1).
		WithQueuePolicy(mwcom.ErrorOnFull).
		Build()
	invoker, _ := rpc.Invoker()

	req1, _ := invoker.Loan()
	req1.Write(thresholdArgs{X: 1})
	if _, err := invoker.Send(req1); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	req2, _ := invoker.Loan()
	req2.Write(thresholdArgs{X: 2})
	_, err := invoker.Send(req2)
	if !errors.Is(err, mwcom.ErrQueueFull) {
		t.Fatalf("second Send under ErrorOnFull must return ErrQueueFull, got %v", err)
	}
}

func TestRpcInvokerFanErrorBeyondMax(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).
		WithMaxInvokers(1).
		Build()
	if _, err := rpc.Invoker(); err != nil {
		t.Fatalf("first Invoker: %v", err)
	}
	_, err := rpc.Invoker()
	if !errors.Is(err, mwcom.ErrFanError) {
		t.Fatalf("a second Invoker past max invokers must return ErrFanError, got %v", err)
	}
}

func TestRpcInvokeValueTimesOutWithNoInvokee(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invoker, _ := rpc.Invoker()

	req, _ := invoker.Loan()
	req.Write(thresholdArgs{X: 1})
	pending, err := invoker.Send(req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	_, err = pending.ReceiveTimeout(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, mwcom.ErrTimeout) {
		t.Fatalf("ReceiveTimeout with no invokee must time out, got %v", err)
	}
}

func TestRpcCloseWakesBlockedInvokeeReceive(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invokee, _ := rpc.Invokee()

	done := make(chan error, 1)
	go func() {
		_, err := invokee.Receive(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := rpc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, mwcom.ErrStateError) {
			t.Fatalf("Receive after Close must return ErrStateError, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake a blocked Invokee.Receive")
	}
}

// TestRpcCanceledReceiveDoesNotLoseResponse pins down that a
// PendingRequest.Receive abandoned via context cancellation must not
// consume a response that arrives concurrently: a second, uncanceled
// Receive on the same pending request must still observe it.
func TestRpcCanceledReceiveDoesNotLoseResponse(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invoker, _ := rpc.Invoker()
	invokee, _ := rpc.Invokee()

	req, _ := invoker.Loan()
	req.Write(thresholdArgs{X: 1})
	pending, err := invoker.Send(req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pending.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Receive on a canceled context must return context.Canceled, got %v", err)
	}

	exec, err := invokee.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := invokee.Respond(exec, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	result, err := pending.Receive(context.Background())
	if err != nil {
		t.Fatalf("a legitimate Receive after a canceled one must still succeed, got %v", err)
	}
	if !result {
		t.Fatal("Receive() = false, want true")
	}
}

// TestRpcCanceledInvokeeReceiveDoesNotLoseRequest is the Invokee-side
// counterpart: a canceled Invokee.Receive must not dequeue and discard a
// pending transaction, losing it for every other Invokee.
func TestRpcCanceledInvokeeReceiveDoesNotLoseRequest(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).Build()
	invoker, _ := rpc.Invoker()
	invokee, _ := rpc.Invokee()

	req, _ := invoker.Loan()
	req.Write(thresholdArgs{X: 5})
	pending, err := invoker.Send(req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := invokee.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Receive on a canceled context must return context.Canceled, got %v", err)
	}

	exec, err := invokee.Receive(context.Background())
	if err != nil {
		t.Fatalf("a legitimate Receive after a canceled one must still see the request, got %v", err)
	}
	if exec.Args().X != 5 {
		t.Fatalf("Args() = %+v, want X=5", exec.Args())
	}
	if err := invokee.Respond(exec, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if _, err := pending.Receive(context.Background()); err != nil {
		t.Fatalf("Receive: %v", err)
	}
}

func TestRpcTxIDsAreUnique(t *testing.T) {
	adapter := New()
	rpc, _ := NewRpcBuilder[thresholdArgs, bool](adapter, mwcom.NewLabel("t")).WithQueueDepth(4).Build()
	invoker, _ := rpc.Invoker()

	seen := make(map[mwcom.TxID]bool)
	for i := 0; i < 3; i++ {
		req, _ := invoker.Loan()
		req.Write(thresholdArgs{X: i})
		pending, err := invoker.Send(req)
		if err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
		if seen[pending.ID()] {
			t.Fatalf("transaction id %s reused", pending.ID())
		}
		seen[pending.ID()] = true
	}
}
