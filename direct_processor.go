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
	"sync"
	"sync/atomic"
)

// DirectProcessor is both a Publisher and a Subscriber: it broadcasts
// whatever it receives to every Subscriber currently registered, live, with
// no buffering and no replay. A Subscriber that subscribes after a value
// has already gone by simply never sees it; one that subscribes after
// DirectProcessor has already reached a terminal state receives that
// terminal signal immediately instead of being registered.
//
// Unlike the other publishers in this package, DirectProcessor broadcasts
// without regard to each subscriber's individual demand: every subscriber
// handed a subscription from DirectProcessor is expected to request
// UnboundedDemand, and every registered subscriber receives every signal
// whatever amount it has requested. This is the hot, no-backpressure
// companion processor retry-when drives its error signal through.
//
// Grounded on the teacher's asyncSubjectImpl: same sync.Map-plus-atomic-index
// registry of live subscribers, same mutex-guarded status transition out of
// "active" into a sticky terminal state, generalized from "replay last
// value" semantics to "no replay at all".
type DirectProcessor[T any] struct {
	mu     sync.Mutex // guards status/termErr transition only, never held during broadcast
	status int32      // one of statusActive/statusErrored/statusCompleted

	subscribers   sync.Map // uint32 -> Subscriber[T]
	subscriberIdx uint32   // atomic

	termErr error // set once, only meaningful when status == statusErrored

	upstreamSet int32 // atomic bool; guards against a misbehaving upstream calling OnSubscribe twice
}

var _ Publisher[int] = (*DirectProcessor[int])(nil)
var _ Subscriber[int] = (*DirectProcessor[int])(nil)

// NewDirectProcessor returns a ready-to-use DirectProcessor.
func NewDirectProcessor[T any]() *DirectProcessor[T] {
	return &DirectProcessor[T]{}
}

// Subscribe implements Publisher. If the processor has already terminated,
// subscriber is handed CancelledSubscription and immediately receives the
// stored terminal signal instead of being registered for future broadcasts.
func (d *DirectProcessor[T]) Subscribe(ctx context.Context, subscriber Subscriber[T]) {
	d.mu.Lock()
	status := d.status
	err := d.termErr
	d.mu.Unlock()

	switch status {
	case statusErrored:
		subscriber.OnSubscribe(CancelledSubscription)
		subscriber.OnError(err)
		return
	case statusCompleted:
		subscriber.OnSubscribe(CancelledSubscription)
		subscriber.OnComplete()
		return
	}

	index := atomic.AddUint32(&d.subscriberIdx, 1) - 1
	d.subscribers.Store(index, subscriber)

	subscriber.OnSubscribe(&directProcessorSubscription[T]{processor: d, index: index})
}

// OnSubscribe implements Subscriber: DirectProcessor requests unbounded
// demand from whatever upstream feeds it, since it has no queue of its own
// to apply backpressure against. A second call — a misbehaving upstream
// calling OnSubscribe more than once — is reported and the new subscription
// is cancelled instead of replacing the first.
func (d *DirectProcessor[T]) OnSubscribe(subscription Subscription) {
	if !atomic.CompareAndSwapInt32(&d.upstreamSet, 0, 1) {
		OnUnhandledError(context.TODO(), newSubscriberError(ErrDoubleSubscription))
		subscription.Cancel()
		return
	}

	subscription.Request(UnboundedDemand)
}

// OnNext broadcasts value to every currently registered subscriber.
func (d *DirectProcessor[T]) OnNext(value T) {
	if atomic.LoadInt32(&d.status) != statusActive {
		OnDroppedNotification(context.TODO(), NewNotificationNext(value))
		return
	}

	d.subscribers.Range(func(_, sub any) bool {
		runSubscriberCallback(context.TODO(), func() {
			sub.(Subscriber[T]).OnNext(value)
		})
		return true
	})
}

// OnError broadcasts a terminal error to every currently registered
// subscriber and unregisters all of them. Any later call to OnError or
// OnComplete is dropped, per the sticky terminal state shared across this
// package's subscribers.
func (d *DirectProcessor[T]) OnError(err error) {
	d.mu.Lock()
	if d.status != statusActive {
		d.mu.Unlock()
		OnDroppedNotification(context.TODO(), NewNotificationError[T](err))
		return
	}

	d.status = statusErrored
	d.termErr = err
	d.mu.Unlock()

	d.subscribers.Range(func(key, sub any) bool {
		d.subscribers.Delete(key)
		runSubscriberCallback(context.TODO(), func() {
			sub.(Subscriber[T]).OnError(err)
		})
		return true
	})
}

// OnComplete broadcasts completion to every currently registered subscriber
// and unregisters all of them.
func (d *DirectProcessor[T]) OnComplete() {
	d.mu.Lock()
	if d.status != statusActive {
		d.mu.Unlock()
		OnDroppedNotification(context.TODO(), NewNotificationComplete[T]())
		return
	}

	d.status = statusCompleted
	d.mu.Unlock()

	d.subscribers.Range(func(key, sub any) bool {
		d.subscribers.Delete(key)
		runSubscriberCallback(context.TODO(), func() {
			sub.(Subscriber[T]).OnComplete()
		})
		return true
	})
}

// HasSubscribers reports whether any subscriber is currently registered.
// Useful for a retry-when selector deciding whether it is still worth
// emitting onto the companion processor.
func (d *DirectProcessor[T]) HasSubscribers() bool {
	has := false
	d.subscribers.Range(func(_, _ any) bool {
		has = true
		return false
	})
	return has
}

// directProcessorSubscription is handed to each subscriber of a
// DirectProcessor. Request is a no-op beyond validation — broadcast is
// unconditional — and Cancel simply removes the subscriber from the
// registry.
type directProcessorSubscription[T any] struct {
	processor *DirectProcessor[T]
	index     uint32
}

func (s *directProcessorSubscription[T]) Request(n int64) {
	validateRequest(n, func(err error) {
		if sub, ok := s.processor.subscribers.LoadAndDelete(s.index); ok {
			sub.(Subscriber[T]).OnError(newSubscriptionError(err))
		}
	})
}

func (s *directProcessorSubscription[T]) Cancel() {
	s.processor.subscribers.Delete(s.index)
}
