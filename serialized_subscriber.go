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

	"github.com/samber/ro/internal/xsync"
)

// SerializedSubscriber wraps a downstream Subscriber so that concurrent
// callers of OnNext/OnError/OnComplete observe the grammar serialized, even
// if the underlying publisher drives them from multiple goroutines at once
// — which the Subscriber contract otherwise forbids publishers from doing,
// but which some upstreams (notably DirectProcessor fed by multiple
// producer goroutines) cannot avoid on their own.
//
// Grounded on the work-in-progress counter drain loop the teacher uses to
// serialize emissions without blocking producers on a held lock: a caller
// that finds work already in flight enqueues its signal and returns instead
// of waiting.
type SerializedSubscriber[T any] struct {
	downstream Subscriber[T]
	ctx        context.Context

	mu      xsync.Mutex
	pending []Notification[T] // guarded by mu; queued while a drain is in flight

	wip      int32 // atomic; >0 means some goroutine currently owns the drain loop
	terminal int32 // atomic bool; sticky once an error/complete has been delivered
}

var _ Subscriber[int] = (*SerializedSubscriber[int])(nil)

// NewSerializedSubscriber wraps downstream so that signals delivered to the
// result are serialized before reaching it.
func NewSerializedSubscriber[T any](ctx context.Context, downstream Subscriber[T]) *SerializedSubscriber[T] {
	return &SerializedSubscriber[T]{
		downstream: downstream,
		ctx:        ctx,
		mu:         xsync.NewMutexWithLock(),
	}
}

// OnSubscribe forwards directly; OnSubscribe is called exactly once by
// contract, so no serialization is needed here.
func (s *SerializedSubscriber[T]) OnSubscribe(subscription Subscription) {
	s.downstream.OnSubscribe(subscription)
}

// OnNext enqueues value and drains the queue if no other goroutine is
// already doing so.
func (s *SerializedSubscriber[T]) OnNext(value T) {
	s.offer(NewNotificationNext(value))
}

// OnError enqueues the terminal error notification. Once delivered, the
// terminal state is sticky: any further signal offered after it is routed
// to OnDroppedNotification instead of the downstream subscriber.
func (s *SerializedSubscriber[T]) OnError(err error) {
	s.offer(NewNotificationError[T](err))
}

// OnComplete enqueues the terminal completion notification, subject to the
// same sticky terminal behavior as OnError.
func (s *SerializedSubscriber[T]) OnComplete() {
	s.offer(NewNotificationComplete[T]())
}

func (s *SerializedSubscriber[T]) offer(n Notification[T]) {
	if atomic.LoadInt32(&s.terminal) != 0 {
		OnDroppedNotification(s.ctx, n)
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, n)
	s.mu.Unlock()

	s.drain()
}

// drain runs the serialized delivery loop. Only one goroutine at a time
// ever executes the body below: a goroutine that increments wip past 1
// knows another goroutine already owns the loop and is responsible for
// observing whatever it just enqueued, so it returns immediately instead of
// re-entering.
func (s *SerializedSubscriber[T]) drain() {
	if atomic.AddInt32(&s.wip, 1) != 1 {
		return
	}

	missed := int32(1)
	for {
		for missed > 0 {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}

			next := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			s.deliver(next)
		}

		missed = atomic.AddInt32(&s.wip, -missed)
		if missed == 0 {
			return
		}
	}
}

func (s *SerializedSubscriber[T]) deliver(n Notification[T]) {
	if atomic.LoadInt32(&s.terminal) != 0 {
		OnDroppedNotification(s.ctx, n)
		return
	}

	switch n.Kind {
	case KindNext:
		s.downstream.OnNext(n.Value)
	case KindError:
		if atomic.CompareAndSwapInt32(&s.terminal, 0, 1) {
			s.downstream.OnError(n.Err)
		} else {
			OnDroppedNotification(s.ctx, n)
		}
	case KindComplete:
		if atomic.CompareAndSwapInt32(&s.terminal, 0, 1) {
			s.downstream.OnComplete()
		} else {
			OnDroppedNotification(s.ctx, n)
		}
	}
}
