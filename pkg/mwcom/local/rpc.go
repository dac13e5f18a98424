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
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

// transaction is one request/response pair in flight, grounded on
// original_source's LocalRequestState: an args slot, a result slot and a
// (result_ready, result_consumed) flag pair guarded by its own condition
// variable, distinct from the pending-request queue's own lock.
//
// Unlike LocalRequestState, this does not carry the service function F as
// a type parameter — spec.md §9's design note calls that parameterization
// out by name as something to drop, and ReceiveAndExecute below takes the
// function as a runtime value instead.
type transaction[Args mwcom.Payload, R any] struct {
	id   mwcom.TxID
	args Args

	mu       sync.Mutex
	cnd      *sync.Cond
	ready    bool
	consumed bool
	result   R
}

func newTransaction[Args mwcom.Payload, R any](id mwcom.TxID, args Args) *transaction[Args, R] {
	t := &transaction[Args, R]{id: id, args: args}
	t.cnd = sync.NewCond(&t.mu)
	return t
}

func (t *transaction[Args, R]) respond(result R) {
	t.mu.Lock()
	t.result = result
	t.ready = true
	t.mu.Unlock()
	t.cnd.Signal()
}

// tryConsume reports the result if one is ready and not yet consumed. It
// returns ErrResponseConsumed if a prior call already consumed it, per
// spec.md §4.4 and testable property 7.
func (t *transaction[Args, R]) tryConsume() (R, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		var zero R
		return zero, false, mwcom.ErrResponseConsumed
	}
	if !t.ready {
		var zero R
		return zero, false, nil
	}
	t.consumed = true
	return t.result, true, nil
}

type pendingQueue[Args mwcom.Payload, R any] struct {
	mu       sync.Mutex
	cnd      *sync.Cond
	items    []*transaction[Args, R]
	maxDepth int
	policy   mwcom.QueuePolicy
	closed   bool
}

func newPendingQueue[Args mwcom.Payload, R any](maxDepth int, policy mwcom.QueuePolicy) *pendingQueue[Args, R] {
	q := &pendingQueue[Args, R]{maxDepth: maxDepth, policy: policy}
	q.cnd = sync.NewCond(&q.mu)
	return q
}

func (q *pendingQueue[Args, R]) push(tx *transaction[Args, R]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) < q.maxDepth {
		q.items = append(q.items, tx)
		q.cnd.Signal()
		return nil
	}
	switch q.policy {
	case mwcom.OverwriteOldest:
		q.items = append(q.items[1:], tx)
		q.cnd.Signal()
		return nil
	case mwcom.OverwriteNewest:
		// The new request is dropped silently, the same as a Topic
		// publish under OverwriteNewest: the caller gets back a
		// PendingRequest that will never receive a response and must
		// rely on ReceiveTimeout, matching spec.md's per-policy
		// backpressure contract applying uniformly across primitives.
		return nil
	default: // ErrorOnFull
		return mwcom.ErrQueueFull
	}
}

func (q *pendingQueue[Args, R]) popLocked() (*transaction[Args, R], bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	tx := q.items[0]
	q.items = q.items[1:]
	return tx, true
}

type rpc[Args mwcom.Payload, R any] struct {
	label        mwcom.Label
	queue        *pendingQueue[Args, R]
	maxInvokers  int
	maxInvokees  int
	log          zerolog.Logger
	mu           sync.Mutex
	invokerCount int
	invokeeCount int
	nextTxID     atomic.Uint64
}

var _ mwcom.Rpc[dummyPayload, int] = (*rpc[dummyPayload, int])(nil)

func (r *rpc[Args, R]) Invoker() (mwcom.Invoker[Args, R], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invokerCount >= r.maxInvokers {
		r.log.Warn().Str("label", r.label.String()).Msg("invoker fan exceeded")
		return nil, mwcom.WrapError("Rpc.Invoker", mwcom.ErrFanError)
	}
	r.invokerCount++
	return &invoker[Args, R]{rpc: r}, nil
}

func (r *rpc[Args, R]) Invokee() (mwcom.Invokee[Args, R], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invokeeCount >= r.maxInvokees {
		r.log.Warn().Str("label", r.label.String()).Msg("invokee fan exceeded")
		return nil, mwcom.WrapError("Rpc.Invokee", mwcom.ErrFanError)
	}
	r.invokeeCount++
	return &invokee[Args, R]{rpc: r}, nil
}

// Close marks the pending-request queue closed and wakes every blocked
// Invokee.Receive, mirroring Topic.Close's handling of blocked
// subscribers: a waiter sees ErrStateError instead of hanging forever.
func (r *rpc[Args, R]) Close() error {
	r.queue.mu.Lock()
	r.queue.closed = true
	r.queue.mu.Unlock()
	r.queue.cnd.Broadcast()
	return nil
}

// request is a loaned, writable argument buffer.
type request[Args mwcom.Payload] struct {
	value Args
	state mwcom.SampleState
}

func (req *request[Args]) Write(args Args) {
	req.value = args
	req.state = mwcom.SampleMutable
}

func (req *request[Args]) AsMutPtr() *Args {
	return &req.value
}

func (req *request[Args]) AssumeInit() {
	req.state = mwcom.SampleMutable
}

func (req *request[Args]) State() mwcom.SampleState {
	return req.state
}

type invoker[Args mwcom.Payload, R any] struct {
	rpc *rpc[Args, R]
}

var _ mwcom.Invoker[dummyPayload, int] = (*invoker[dummyPayload, int])(nil)

func (inv *invoker[Args, R]) Loan() (mwcom.Request[Args], error) {
	return &request[Args]{state: mwcom.SampleUninitialized}, nil
}

func (inv *invoker[Args, R]) Send(req mwcom.Request[Args]) (mwcom.PendingRequest[R], error) {
	r, ok := req.(*request[Args])
	if !ok || r.state == mwcom.SampleUninitialized {
		return nil, mwcom.WrapError("Invoker.Send", mwcom.ErrStateError)
	}
	id := mwcom.TxID(inv.rpc.nextTxID.Add(1))
	tx := newTransaction[Args, R](id, r.value)
	if err := inv.rpc.queue.push(tx); err != nil {
		inv.rpc.log.Warn().Str("label", inv.rpc.label.String()).Str("tx", id.String()).Msg("pending request queue full")
		return nil, mwcom.WrapError("Invoker.Send", err)
	}
	inv.rpc.log.Debug().Str("label", inv.rpc.label.String()).Str("tx", id.String()).Msg("request sent")
	return &pendingRequest[Args, R]{tx: tx}, nil
}

func (inv *invoker[Args, R]) Invoke(ctx context.Context, req mwcom.Request[Args]) (R, error) {
	pr, err := inv.Send(req)
	if err != nil {
		var zero R
		return zero, err
	}
	return pr.Receive(ctx)
}

func (inv *invoker[Args, R]) InvokeValue(ctx context.Context, args Args) (R, error) {
	req, err := inv.Loan()
	if err != nil {
		var zero R
		return zero, err
	}
	req.Write(args)
	return inv.Invoke(ctx, req)
}

func (inv *invoker[Args, R]) Close() error {
	inv.rpc.mu.Lock()
	defer inv.rpc.mu.Unlock()
	if inv.rpc.invokerCount > 0 {
		inv.rpc.invokerCount--
	}
	return nil
}

type pendingRequest[Args mwcom.Payload, R any] struct {
	tx *transaction[Args, R]
}

var _ mwcom.PendingRequest[int] = (*pendingRequest[dummyPayload, int])(nil)

func (p *pendingRequest[Args, R]) ID() mwcom.TxID {
	return p.tx.id
}

func (p *pendingRequest[Args, R]) TryReceive() (R, error) {
	result, ok, err := p.tx.tryConsume()
	if err != nil {
		return result, mwcom.WrapError("PendingRequest.TryReceive", err)
	}
	if !ok {
		var zero R
		return zero, mwcom.WrapError("PendingRequest.TryReceive", mwcom.ErrQueueEmpty)
	}
	return result, nil
}

func (p *pendingRequest[Args, R]) Receive(ctx context.Context) (R, error) {
	const op = "PendingRequest.Receive"
	p.tx.mu.Lock()
	if p.tx.consumed {
		p.tx.mu.Unlock()
		var zero R
		return zero, mwcom.WrapError(op, mwcom.ErrResponseConsumed)
	}
	p.tx.mu.Unlock()

	var claim waitClaim
	resCh := make(chan R, 1)
	go func() {
		p.tx.mu.Lock()
		for !p.tx.ready {
			p.tx.cnd.Wait()
		}
		p.tx.mu.Unlock()

		if !claim.tryClaim() {
			return
		}
		p.tx.mu.Lock()
		p.tx.consumed = true
		v := p.tx.result
		p.tx.mu.Unlock()
		resCh <- v
	}()

	select {
	case v := <-resCh:
		return v, nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			return <-resCh, nil
		}
		var zero R
		return zero, ctx.Err()
	}
}

func (p *pendingRequest[Args, R]) ReceiveTimeout(ctx context.Context, d time.Duration) (R, error) {
	const op = "PendingRequest.ReceiveTimeout"
	p.tx.mu.Lock()
	if p.tx.consumed {
		p.tx.mu.Unlock()
		var zero R
		return zero, mwcom.WrapError(op, mwcom.ErrResponseConsumed)
	}
	p.tx.mu.Unlock()

	type result struct {
		value    R
		timedOut bool
	}
	var claim waitClaim
	resCh := make(chan result, 1)
	deadline := time.Now().Add(d)

	go func() {
		p.tx.mu.Lock()
		for !p.tx.ready {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				p.tx.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{timedOut: true}
				}
				return
			}
			waitWithTimeout(p.tx.cnd, &p.tx.mu, remaining)
		}
		p.tx.mu.Unlock()

		if !claim.tryClaim() {
			return
		}
		p.tx.mu.Lock()
		p.tx.consumed = true
		v := p.tx.result
		p.tx.mu.Unlock()
		resCh <- result{value: v}
	}()

	select {
	case r := <-resCh:
		if r.timedOut {
			var zero R
			return zero, mwcom.WrapError(op, mwcom.ErrTimeout)
		}
		return r.value, nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			r := <-resCh
			if r.timedOut {
				var zero R
				return zero, mwcom.WrapError(op, mwcom.ErrTimeout)
			}
			return r.value, nil
		}
		var zero R
		return zero, ctx.Err()
	}
}

type pendingExecution[Args mwcom.Payload, R any] struct {
	tx *transaction[Args, R]
}

var _ mwcom.PendingExecution[dummyPayload] = (*pendingExecution[dummyPayload, int])(nil)

func (p *pendingExecution[Args, R]) ID() mwcom.TxID {
	return p.tx.id
}

func (p *pendingExecution[Args, R]) Args() Args {
	return p.tx.args
}

type invokee[Args mwcom.Payload, R any] struct {
	rpc *rpc[Args, R]
}

var _ mwcom.Invokee[dummyPayload, int] = (*invokee[dummyPayload, int])(nil)

func (inve *invokee[Args, R]) TryReceive() (mwcom.PendingExecution[Args], error) {
	q := inve.rpc.queue
	q.mu.Lock()
	tx, ok := q.popLocked()
	q.mu.Unlock()
	if !ok {
		return nil, mwcom.WrapError("Invokee.TryReceive", mwcom.ErrQueueEmpty)
	}
	return &pendingExecution[Args, R]{tx: tx}, nil
}

func (inve *invokee[Args, R]) Receive(ctx context.Context) (mwcom.PendingExecution[Args], error) {
	q := inve.rpc.queue
	type result struct {
		tx  *transaction[Args, R]
		err error
	}
	var claim waitClaim
	resCh := make(chan result, 1)
	go func() {
		q.mu.Lock()
		for {
			if tx, ok := q.popLocked(); ok {
				q.mu.Unlock()
				if !claim.tryClaim() {
					// The caller already left via ctx.Done(). Put the
					// transaction back so no other Invokee loses it.
					q.mu.Lock()
					q.items = append([]*transaction[Args, R]{tx}, q.items...)
					q.mu.Unlock()
					q.cnd.Signal()
					return
				}
				resCh <- result{tx: tx}
				return
			}
			if q.closed {
				q.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{err: mwcom.WrapError("Invokee.Receive", mwcom.ErrStateError)}
				}
				return
			}
			q.cnd.Wait()
		}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			return nil, r.err
		}
		return &pendingExecution[Args, R]{tx: r.tx}, nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			r := <-resCh
			if r.err != nil {
				return nil, r.err
			}
			return &pendingExecution[Args, R]{tx: r.tx}, nil
		}
		return nil, ctx.Err()
	}
}

func (inve *invokee[Args, R]) Respond(exec mwcom.PendingExecution[Args], result R) error {
	pe, ok := exec.(*pendingExecution[Args, R])
	if !ok {
		return mwcom.WrapError("Invokee.Respond", mwcom.ErrStateError)
	}
	pe.tx.respond(result)
	return nil
}

func (inve *invokee[Args, R]) ReceiveAndExecute(ctx context.Context, fn func(args Args) R) error {
	const op = "Invokee.ReceiveAndExecute"
	exec, err := inve.Receive(ctx)
	if err != nil {
		return mwcom.WrapError(op, err)
	}
	result := fn(exec.Args())
	if err := inve.Respond(exec, result); err != nil {
		return mwcom.WrapError(op, err)
	}
	return nil
}

func (inve *invokee[Args, R]) Close() error {
	inve.rpc.mu.Lock()
	defer inve.rpc.mu.Unlock()
	if inve.rpc.invokeeCount > 0 {
		inve.rpc.invokeeCount--
	}
	return nil
}

type rpcBuilder[Args mwcom.Payload, R any] struct {
	adapter     *Adapter
	label       mwcom.Label
	maxDepth    int
	policy      mwcom.QueuePolicy
	maxInvokers int
	maxInvokees int
}

var _ mwcom.RpcBuilder[dummyPayload, int] = (*rpcBuilder[dummyPayload, int])(nil)

// NewRpcBuilder starts building an Rpc[Args, R] on adapter. See
// mwcom.Adapter's doc comment for why this is a package-level generic
// function rather than a generic interface method.
func NewRpcBuilder[Args mwcom.Payload, R any](a *Adapter, label mwcom.Label) mwcom.RpcBuilder[Args, R] {
	return &rpcBuilder[Args, R]{
		adapter:     a,
		label:       label,
		maxDepth:    mwcom.DefaultMaxQueueDepth,
		policy:      mwcom.ErrorOnFull,
		maxInvokers: mwcom.DefaultMaxInvokers,
		maxInvokees: mwcom.DefaultMaxInvokers,
	}
}

func (b *rpcBuilder[Args, R]) WithQueueDepth(depth int) mwcom.RpcBuilder[Args, R] {
	b.maxDepth = depth
	return b
}

func (b *rpcBuilder[Args, R]) WithQueuePolicy(policy mwcom.QueuePolicy) mwcom.RpcBuilder[Args, R] {
	b.policy = policy
	return b
}

func (b *rpcBuilder[Args, R]) WithMaxInvokers(n int) mwcom.RpcBuilder[Args, R] {
	b.maxInvokers = n
	return b
}

func (b *rpcBuilder[Args, R]) WithMaxInvokees(n int) mwcom.RpcBuilder[Args, R] {
	b.maxInvokees = n
	return b
}

func (b *rpcBuilder[Args, R]) Build() (mwcom.Rpc[Args, R], error) {
	if b.maxDepth < 1 {
		return nil, mwcom.WrapError("RpcBuilder.Build", mwcom.ErrStateError)
	}
	if b.maxInvokers < 1 || b.maxInvokees < 1 {
		return nil, mwcom.WrapError("RpcBuilder.Build", mwcom.ErrFanError)
	}
	if err := b.adapter.checkOpen(); err != nil {
		return nil, mwcom.WrapError("RpcBuilder.Build", err)
	}
	r := &rpc[Args, R]{
		label:       b.label,
		queue:       newPendingQueue[Args, R](b.maxDepth, b.policy),
		maxInvokers: b.maxInvokers,
		maxInvokees: b.maxInvokees,
		log:         b.adapter.log,
	}
	b.adapter.track(r)
	return r, nil
}
