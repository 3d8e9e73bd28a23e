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
	"sync/atomic"

	"github.com/samber/lo"
)

// RetryWhen resubscribes to source whenever it errors, driven by a
// caller-supplied selector rather than a fixed retry count or backoff: each
// error source produces is pushed onto a companion error Publisher, and
// selector gets to turn that stream of errors into its own stream of
// "retry now" signals. A Next from the selector's publisher means retry
// immediately; an Error from it is forwarded to the downstream subscriber
// instead of being retried; a Complete from it means give up retrying and
// complete downstream without forwarding the original error. A nil
// publisher returned by selector is itself a protocol violation, reported
// as ErrNullCompanion rather than panicking on the first Subscribe; a panic
// inside selector is recovered and reported through the downstream's
// OnError.
//
// The main subscriber (attached to source on every attempt) and the other
// subscriber (attached once, to the selector's trigger publisher) run on
// independent goroutines whenever source and the trigger publisher are
// asynchronous, so both write through a shared SerializedSubscriber rather
// than directly to the caller's downstream — otherwise two goroutines could
// interleave calls into it, which the Subscriber contract forbids. The
// companion subscription itself is held in an Arbiter so that the main
// subscriber completing normally can cancel it, per the cyclic
// main/other/companion ownership spec'd for this operator.
//
// Grounded on the teacher's RetryWithConfig (a fixed-policy resubscription
// loop), generalized here from "policy baked into the operator" to "policy
// expressed as a publisher", and wired onto DirectProcessor as the
// companion broadcast channel the selector observes.
func RetryWhen[T any](selector func(errors Publisher[error]) Publisher[struct{}]) func(Publisher[T]) Publisher[T] {
	return func(source Publisher[T]) Publisher[T] {
		return PublisherFunc[T](func(ctx context.Context, downstream Subscriber[T]) {
			serialized := NewSerializedSubscriber[T](ctx, downstream)

			r := &retryWhenRuntime[T]{
				ctx:        ctx,
				source:     source,
				downstream: serialized,
				companion:  NewDirectProcessor[error](),
			}
			r.multi = NewMultiSubscriber[T](serialized)

			serialized.OnSubscribe(r.multi)

			var trigger Publisher[struct{}]
			selectorPanicked := false
			lo.TryCatchWithErrorValue(
				func() error {
					trigger = selector(r.companion)
					return nil
				},
				func(e any) {
					selectorPanicked = true
					serialized.OnError(newPublisherError(recoverValueToError(e)))
				},
			)
			if selectorPanicked {
				return
			}
			if trigger == nil {
				serialized.OnError(newPublisherError(ErrNullCompanion))
				return
			}

			r.trigger = NewArbiter[struct{}](serialized)
			trigger.Subscribe(ctx, &retryWhenOtherSubscriber[T]{runtime: r})

			r.resubscribe()
		})
	}
}

// retryWhenRuntime holds the state shared between the main subscriber
// (attached to source on every (re)subscription) and the other subscriber
// (attached once, to the selector's trigger publisher).
type retryWhenRuntime[T any] struct {
	ctx        context.Context
	source     Publisher[T]
	downstream Subscriber[T] // always a *SerializedSubscriber[T]; see RetryWhen
	multi      *MultiSubscriber[T]
	companion  *DirectProcessor[error]
	trigger    *Arbiter[struct{}]
}

func (r *retryWhenRuntime[T]) resubscribe() {
	if r.multi.IsCancelled() {
		return
	}

	r.source.Subscribe(r.ctx, &retryWhenMainSubscriber[T]{runtime: r})
}

// retryWhenMainSubscriber is attached to source for the duration of one
// attempt. It forwards Next and Complete straight to the downstream
// subscriber; an Error is redirected onto the companion processor instead,
// handing the retry decision to the selector.
type retryWhenMainSubscriber[T any] struct {
	runtime    *retryWhenRuntime[T]
	subscribed int32 // atomic bool; guards against a misbehaving source calling OnSubscribe twice
}

func (m *retryWhenMainSubscriber[T]) OnSubscribe(subscription Subscription) {
	if !atomic.CompareAndSwapInt32(&m.subscribed, 0, 1) {
		OnUnhandledError(m.runtime.ctx, newSubscriberError(ErrDoubleSubscription))
		subscription.Cancel()
		return
	}

	m.runtime.multi.Set(subscription)
}

func (m *retryWhenMainSubscriber[T]) OnNext(value T) {
	m.runtime.multi.Produced(1)
	m.runtime.downstream.OnNext(value)
}

func (m *retryWhenMainSubscriber[T]) OnError(err error) {
	m.runtime.companion.OnNext(err)
}

// OnComplete forwards completion downstream and cancels both the multi
// subscriber and the companion arbiter: once the main subscriber has
// terminated normally, the reference behaviour ignores any further
// companion signal rather than resubscribing to an already-finished source.
func (m *retryWhenMainSubscriber[T]) OnComplete() {
	m.runtime.multi.Cancel()
	m.runtime.trigger.Cancel()
	m.runtime.downstream.OnComplete()
}

// retryWhenOtherSubscriber is attached once, to the publisher the selector
// returns. Its signals are the retry/give-up decisions.
type retryWhenOtherSubscriber[T any] struct {
	runtime    *retryWhenRuntime[T]
	subscribed int32 // atomic bool; guards against a misbehaving trigger publisher calling OnSubscribe twice
}

func (o *retryWhenOtherSubscriber[T]) OnSubscribe(subscription Subscription) {
	if !atomic.CompareAndSwapInt32(&o.subscribed, 0, 1) {
		OnUnhandledError(o.runtime.ctx, newSubscriberError(ErrDoubleSubscription))
		subscription.Cancel()
		return
	}

	o.runtime.trigger.SetSubscription(subscription)
	o.runtime.trigger.Request(UnboundedDemand)
}

func (o *retryWhenOtherSubscriber[T]) OnNext(struct{}) {
	o.runtime.resubscribe()
}

func (o *retryWhenOtherSubscriber[T]) OnError(err error) {
	o.runtime.multi.Cancel()
	o.runtime.downstream.OnError(err)
}

func (o *retryWhenOtherSubscriber[T]) OnComplete() {
	o.runtime.multi.Cancel()
	o.runtime.downstream.OnComplete()
}
