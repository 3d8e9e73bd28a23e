// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ro

import (
	"context"
	"reflect"
	"sync/atomic"
)

// Iterator produces a finite or infinite sequence of values one at a time.
// Next must only be called after HasNext has reported true for that
// element; calling it otherwise is undefined. A nil error from Next with no
// further meaningful value is not a valid state — Next always either
// returns a usable value or a non-nil error, in which case the iterator is
// considered exhausted with that error.
type Iterator[T any] interface {
	HasNext() bool
	Next() (T, error)
}

// sliceIterator is the Iterator grounded on the teacher's FromSlice/Of
// creation operators, generalized from "emit directly" to "iterate, to be
// drained under demand".
type sliceIterator[T any] struct {
	values []T
	index  int
}

func (it *sliceIterator[T]) HasNext() bool {
	return it.index < len(it.values)
}

func (it *sliceIterator[T]) Next() (T, error) {
	v := it.values[it.index]
	it.index++
	return v, nil
}

// FromSlice returns a Publisher that emits every element of values, in
// order, then completes. values is not copied: each subscriber iterates its
// own cursor over the same underlying slice.
func FromSlice[T any](values []T) Publisher[T] {
	return NewIterablePublisher(func() (Iterator[T], error) {
		return &sliceIterator[T]{values: values}, nil
	})
}

// Of returns a Publisher that emits exactly the given values, in order,
// then completes. It is FromSlice with variadic sugar.
func Of[T any](values ...T) Publisher[T] {
	return FromSlice(values)
}

// NewIterablePublisher returns a Publisher that, for each subscriber, calls
// newIterator once to obtain a fresh Iterator and drains it under that
// subscriber's demand. newIterator returning a nil error is required to
// also return a non-nil iterator; returning a nil iterator is reported
// through OnError as ErrIterablePublisherNil instead of panicking. An
// iterator with nothing to yield is handed CancelledSubscription and
// completed right away.
func NewIterablePublisher[T any](newIterator func() (Iterator[T], error)) Publisher[T] {
	return PublisherFunc[T](func(ctx context.Context, subscriber Subscriber[T]) {
		it, err := newIterator()
		if err != nil {
			subscriber.OnSubscribe(CancelledSubscription)
			subscriber.OnError(newPublisherError(err))
			return
		}

		if it == nil {
			subscriber.OnSubscribe(CancelledSubscription)
			subscriber.OnError(newPublisherError(ErrIterablePublisherNil))
			return
		}

		if !it.HasNext() {
			subscriber.OnSubscribe(CancelledSubscription)
			subscriber.OnComplete()
			return
		}

		sub := &iterableSubscription[T]{
			ctx:        ctx,
			it:         it,
			downstream: subscriber,
		}
		sub.conditional, sub.isConditional = AsConditional[T](subscriber)

		subscriber.OnSubscribe(sub)
	})
}

// isNullElement reports whether v is a nil pointer, interface, map, slice,
// channel, or func — or the nil value of an interface-typed T itself. Go has
// no single universal nil check across an arbitrary type parameter, so this
// falls back to reflect.Value.Kind the same way the teacher's own Pipe does
// to inspect a generic type it only knows through reflection.
func isNullElement[T any](v T) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// iterableSubscription is both the Subscription and the
// SynchronousSubscription handed to a subscriber of an IterablePublisher.
// It serializes draining via a work-in-progress counter identical in shape
// to SerializedSubscriber's, since Request may be called concurrently with
// an in-flight drain (for instance from inside the downstream's own
// OnNext).
type iterableSubscription[T any] struct {
	ctx        context.Context
	it         Iterator[T]
	downstream Subscriber[T]

	// conditional/isConditional cache the one-time AsConditional probe of
	// downstream, per spec step 3: "if S implements the conditional
	// capability... install the conditional subscription; else the standard
	// subscription."
	conditional   ConditionalSubscriber[T]
	isConditional bool

	requested int64 // atomic
	wip       int32 // atomic
	cancelled int32 // atomic bool
	fused     int32 // atomic bool; true once RequestFusion(FusionSync) is granted
}

var _ SynchronousSubscription[int] = (*iterableSubscription[int])(nil)

func (s *iterableSubscription[T]) Request(n int64) {
	if s.isCancelled() {
		OnUnhandledError(s.ctx, newSubscriptionError(ErrUnsubscribedRequest))
		return
	}

	if atomic.LoadInt32(&s.fused) != 0 {
		// In fused mode the downstream drives consumption entirely through
		// Poll; Request is a no-op signal that more may be pulled, which
		// the downstream already knows.
		return
	}

	if !validateRequest(n, func(err error) {
		s.downstream.OnError(newSubscriptionError(err))
	}) {
		atomic.StoreInt32(&s.cancelled, 1)
		return
	}

	addCap(&s.requested, n)
	s.drain()
}

func (s *iterableSubscription[T]) Cancel() {
	atomic.StoreInt32(&s.cancelled, 1)
}

func (s *iterableSubscription[T]) isCancelled() bool {
	return atomic.LoadInt32(&s.cancelled) != 0
}

// RequestFusion implements SynchronousSubscription. Only FusionSync is ever
// granted: an iterable publisher has nothing asynchronous about it, so
// partial (async-only) fusion would add overhead without benefit.
func (s *iterableSubscription[T]) RequestFusion(mode FusionMode) FusionMode {
	if mode == FusionSync {
		atomic.StoreInt32(&s.fused, 1)
		return FusionSync
	}

	return FusionNone
}

func (s *iterableSubscription[T]) IsEmpty() bool {
	return !s.it.HasNext()
}

func (s *iterableSubscription[T]) Poll() (value T, ok bool) {
	var zero T

	if s.isCancelled() {
		return zero, false
	}

	if !s.it.HasNext() {
		// Poll requires a prior successful IsEmpty() == false; calling it
		// against an exhausted iterator is a caller-side protocol violation,
		// not end-of-stream. In fused mode end-of-stream is reported only by
		// IsEmpty() returning true; OnComplete is not called.
		OnUnhandledError(s.ctx, newSubscriptionError(ErrFusionPollEmpty))
		return zero, false
	}

	v, err := s.it.Next()
	if err != nil {
		s.downstream.OnError(newPublisherError(err))
		return zero, false
	}

	if isNullElement(v) {
		s.downstream.OnError(newPublisherError(ErrNullElement))
		return zero, false
	}

	return v, true
}

func (s *iterableSubscription[T]) Clear() {
	for s.it.HasNext() {
		if _, err := s.it.Next(); err != nil {
			break
		}
	}
}

func (s *iterableSubscription[T]) Size() int {
	if sized, ok := s.it.(interface{ Len() int }); ok {
		return sized.Len()
	}

	if s.it.HasNext() {
		return 1
	}

	return 0
}

// drain runs the unfused, request-driven emission loop. Only one goroutine
// ever executes its body at a time, following the same WIP-counter
// discipline as SerializedSubscriber.
func (s *iterableSubscription[T]) drain() {
	if atomic.AddInt32(&s.wip, 1) != 1 {
		return
	}

	missed := int32(1)
	for missed > 0 {
		for {
			if s.isCancelled() {
				return
			}

			if !s.it.HasNext() {
				s.downstream.OnComplete()
				return
			}

			if atomic.LoadInt64(&s.requested) <= 0 {
				break
			}

			v, err := s.it.Next()
			if err != nil {
				s.downstream.OnError(newPublisherError(err))
				return
			}

			if isNullElement(v) {
				s.downstream.OnError(newPublisherError(ErrNullElement))
				return
			}

			if s.isConditional {
				accepted := false
				runSubscriberCallback(s.ctx, func() {
					accepted = s.conditional.TryOnNext(v)
				})
				if !accepted {
					// Rejected: no unit of demand is consumed, try the next
					// element against the same outstanding budget.
					continue
				}

				produced(&s.requested, 1)
				continue
			}

			produced(&s.requested, 1)
			runSubscriberCallback(s.ctx, func() {
				s.downstream.OnNext(v)
			})
		}

		missed = atomic.AddInt32(&s.wip, -missed)
	}
}
