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

	"github.com/rs/zerolog"

	"github.com/eclipse-score/inc-mw-com/pkg/mwcom"
)

// subscriberQueue is one subscriber's bounded, per-subscriber sample
// queue. spec.md §4.3 makes backpressure a per-subscriber concern: a slow
// subscriber drops/rejects samples without affecting any other
// subscriber's queue. original_source's LocalTopic used a single shared
// queue and never enforced max_queue_depth or queue_policy at all (an
// abandoned draft per spec.md §9's own design note); this is the
// complete implementation spec.md §4.3 steps 1-4 require.
type subscriberQueue[T mwcom.Payload] struct {
	mu       sync.Mutex
	cnd      *sync.Cond
	items    []T
	maxDepth int
	policy   mwcom.QueuePolicy
	closed   bool
}

func newSubscriberQueue[T mwcom.Payload](maxDepth int, policy mwcom.QueuePolicy) *subscriberQueue[T] {
	q := &subscriberQueue[T]{maxDepth: maxDepth, policy: policy}
	q.cnd = sync.NewCond(&q.mu)
	return q
}

// push applies the queue's policy and returns ErrQueueFull if the policy
// is ErrorOnFull and the queue was already at capacity.
func (q *subscriberQueue[T]) push(value T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) < q.maxDepth {
		q.items = append(q.items, value)
		q.cnd.Signal()
		return nil
	}

	switch q.policy {
	case mwcom.OverwriteOldest:
		q.items = append(q.items[1:], value)
		q.cnd.Signal()
		return nil
	case mwcom.OverwriteNewest:
		return nil
	default: // ErrorOnFull
		return mwcom.ErrQueueFull
	}
}

func (q *subscriberQueue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *subscriberQueue[T]) popLocked() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

type topic[T mwcom.Payload] struct {
	label       mwcom.Label
	maxDepth    int
	policy      mwcom.QueuePolicy
	maxFanIn    int
	maxFanOut   int
	log         zerolog.Logger
	mu          sync.Mutex
	subscribers []*subscriberQueue[T]
	publishers  int
}

var _ mwcom.Topic[dummyPayload] = (*topic[dummyPayload])(nil)

func (t *topic[T]) Publisher() (mwcom.Publisher[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.publishers >= t.maxFanIn {
		t.log.Warn().Str("label", t.label.String()).Msg("publisher fan-in exceeded")
		return nil, mwcom.WrapError("Topic.Publisher", mwcom.ErrFanError)
	}
	t.publishers++
	return &publisher[T]{topic: t}, nil
}

func (t *topic[T]) Subscriber() (mwcom.Subscriber[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.subscribers) >= t.maxFanOut {
		t.log.Warn().Str("label", t.label.String()).Msg("subscriber fan-out exceeded")
		return nil, mwcom.WrapError("Topic.Subscriber", mwcom.ErrFanError)
	}
	q := newSubscriberQueue[T](t.maxDepth, t.policy)
	t.subscribers = append(t.subscribers, q)
	return &subscriber[T]{topic: t, queue: q}, nil
}

func (t *topic[T]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, q := range t.subscribers {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cnd.Broadcast()
	}
	return nil
}

// sampleMut is a loaned, writable sample. Topic's loan pool in this
// reference transport is logical, not physically preallocated: Go's
// allocator already gives the "no manual allocation bookkeeping" property
// the teacher's cgo-backed pool exists to provide over raw malloc.
type sampleMut[T mwcom.Payload] struct {
	value T
	state mwcom.SampleState
}

func (s *sampleMut[T]) Write(value T) {
	s.value = value
	s.state = mwcom.SampleMutable
}

func (s *sampleMut[T]) AsMutPtr() *T {
	return &s.value
}

func (s *sampleMut[T]) AssumeInit() {
	s.state = mwcom.SampleMutable
}

func (s *sampleMut[T]) State() mwcom.SampleState {
	return s.state
}

type sample[T mwcom.Payload] struct {
	value T
}

func (s *sample[T]) Get() T {
	return s.value
}

type publisher[T mwcom.Payload] struct {
	topic *topic[T]
}

var _ mwcom.Publisher[dummyPayload] = (*publisher[dummyPayload])(nil)

func (p *publisher[T]) Loan() (mwcom.SampleMut[T], error) {
	return &sampleMut[T]{state: mwcom.SampleUninitialized}, nil
}

func (p *publisher[T]) Publish(s mwcom.SampleMut[T]) error {
	sm, ok := s.(*sampleMut[T])
	if !ok || sm.State() == mwcom.SampleUninitialized {
		return mwcom.WrapError("Publisher.Publish", mwcom.ErrStateError)
	}

	p.topic.mu.Lock()
	subs := make([]*subscriberQueue[T], len(p.topic.subscribers))
	copy(subs, p.topic.subscribers)
	p.topic.mu.Unlock()

	var firstErr error
	for _, q := range subs {
		if err := q.push(sm.value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sm.state = mwcom.SampleImmutable
	if firstErr != nil {
		p.topic.log.Warn().Str("label", p.topic.label.String()).Err(firstErr).Msg("publish backpressure")
		return mwcom.WrapError("Publisher.Publish", firstErr)
	}
	p.topic.log.Debug().Str("label", p.topic.label.String()).Msg("published sample")
	return nil
}

func (p *publisher[T]) PublishValue(value T) error {
	s, err := p.Loan()
	if err != nil {
		return err
	}
	s.Write(value)
	return p.Publish(s)
}

func (p *publisher[T]) Close() error {
	p.topic.mu.Lock()
	defer p.topic.mu.Unlock()
	if p.topic.publishers > 0 {
		p.topic.publishers--
	}
	return nil
}

type subscriber[T mwcom.Payload] struct {
	topic *topic[T]
	queue *subscriberQueue[T]
}

var _ mwcom.Subscriber[dummyPayload] = (*subscriber[dummyPayload])(nil)

func (s *subscriber[T]) TryReceive() (mwcom.Sample[T], error) {
	v, ok := s.queue.tryPop()
	if !ok {
		return nil, mwcom.WrapError("Subscriber.TryReceive", mwcom.ErrQueueEmpty)
	}
	return &sample[T]{value: v}, nil
}

func (s *subscriber[T]) Receive(ctx context.Context) (mwcom.Sample[T], error) {
	type result struct {
		value T
		err   error
	}
	var claim waitClaim
	resCh := make(chan result, 1)
	go func() {
		q := s.queue
		q.mu.Lock()
		for {
			if v, ok := q.popLocked(); ok {
				q.mu.Unlock()
				if !claim.tryClaim() {
					// The caller already left via ctx.Done(). The
					// sample was already dequeued, so hand it back to
					// the front of the queue instead of dropping it.
					q.mu.Lock()
					q.items = append([]T{v}, q.items...)
					q.mu.Unlock()
					q.cnd.Signal()
					return
				}
				resCh <- result{value: v}
				return
			}
			if q.closed {
				q.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{err: mwcom.WrapError("Subscriber.Receive", mwcom.ErrStateError)}
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
		return &sample[T]{value: r.value}, nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			r := <-resCh
			if r.err != nil {
				return nil, r.err
			}
			return &sample[T]{value: r.value}, nil
		}
		return nil, ctx.Err()
	}
}

func (s *subscriber[T]) ReceiveTimeout(ctx context.Context, d time.Duration) (mwcom.Sample[T], error) {
	type result struct {
		value    T
		err      error
		timedOut bool
	}
	var claim waitClaim
	resCh := make(chan result, 1)
	deadline := time.Now().Add(d)

	go func() {
		q := s.queue
		q.mu.Lock()
		for {
			if v, ok := q.popLocked(); ok {
				q.mu.Unlock()
				if !claim.tryClaim() {
					q.mu.Lock()
					q.items = append([]T{v}, q.items...)
					q.mu.Unlock()
					q.cnd.Signal()
					return
				}
				resCh <- result{value: v}
				return
			}
			if q.closed {
				q.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{err: mwcom.WrapError("Subscriber.ReceiveTimeout", mwcom.ErrStateError)}
				}
				return
			}
			remaining := time.Until(deadline)
			if remaining <= 0 {
				q.mu.Unlock()
				if claim.tryClaim() {
					resCh <- result{timedOut: true}
				}
				return
			}
			waitWithTimeout(q.cnd, &q.mu, remaining)
		}
	}()

	select {
	case r := <-resCh:
		if r.timedOut {
			return nil, mwcom.WrapError("Subscriber.ReceiveTimeout", mwcom.ErrTimeout)
		}
		if r.err != nil {
			return nil, r.err
		}
		return &sample[T]{value: r.value}, nil
	case <-ctx.Done():
		if !claim.tryClaim() {
			r := <-resCh
			if r.timedOut {
				return nil, mwcom.WrapError("Subscriber.ReceiveTimeout", mwcom.ErrTimeout)
			}
			if r.err != nil {
				return nil, r.err
			}
			return &sample[T]{value: r.value}, nil
		}
		return nil, ctx.Err()
	}
}

func (s *subscriber[T]) Close() error {
	return nil
}

type topicBuilder[T mwcom.Payload] struct {
	adapter   *Adapter
	label     mwcom.Label
	maxDepth  int
	policy    mwcom.QueuePolicy
	maxFanIn  int
	maxFanOut int
}

var _ mwcom.TopicBuilder[dummyPayload] = (*topicBuilder[dummyPayload])(nil)

// NewTopicBuilder starts building a Topic[T] on adapter. See
// mwcom.Adapter's doc comment for why this is a package-level generic
// function rather than a generic interface method.
func NewTopicBuilder[T mwcom.Payload](a *Adapter, label mwcom.Label) mwcom.TopicBuilder[T] {
	return &topicBuilder[T]{
		adapter:   a,
		label:     label,
		maxDepth:  mwcom.DefaultMaxQueueDepth,
		policy:    mwcom.ErrorOnFull,
		maxFanIn:  mwcom.DefaultMaxFanIn,
		maxFanOut: mwcom.DefaultMaxFanOut,
	}
}

func (b *topicBuilder[T]) WithQueueDepth(depth int) mwcom.TopicBuilder[T] {
	b.maxDepth = depth
	return b
}

func (b *topicBuilder[T]) WithQueuePolicy(policy mwcom.QueuePolicy) mwcom.TopicBuilder[T] {
	b.policy = policy
	return b
}

func (b *topicBuilder[T]) WithMaxFanIn(n int) mwcom.TopicBuilder[T] {
	b.maxFanIn = n
	return b
}

func (b *topicBuilder[T]) WithMaxFanOut(n int) mwcom.TopicBuilder[T] {
	b.maxFanOut = n
	return b
}

func (b *topicBuilder[T]) Build() (mwcom.Topic[T], error) {
	if b.maxDepth < 1 {
		return nil, mwcom.WrapError("TopicBuilder.Build", mwcom.ErrStateError)
	}
	if b.maxFanIn < 1 || b.maxFanOut < 1 {
		return nil, mwcom.WrapError("TopicBuilder.Build", mwcom.ErrFanError)
	}
	if err := b.adapter.checkOpen(); err != nil {
		return nil, mwcom.WrapError("TopicBuilder.Build", err)
	}
	t := &topic[T]{
		label:     b.label,
		maxDepth:  b.maxDepth,
		policy:    b.policy,
		maxFanIn:  b.maxFanIn,
		maxFanOut: b.maxFanOut,
		log:       b.adapter.log,
	}
	b.adapter.track(t)
	return t, nil
}
