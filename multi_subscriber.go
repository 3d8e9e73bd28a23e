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

	"github.com/samber/ro/internal/xatomic"
)

// MultiSubscriber is a Subscription that can swap its upstream out from
// under itself, for operators that resubscribe to a fresh publisher after
// the previous one terminated (retry-when's main subscriber being the
// motivating case). Unlike Arbiter, which only ever receives one upstream,
// MultiSubscriber is built to receive many, one after another, folding the
// demand already granted to the previous upstream into the request made of
// the new one.
//
// Grounded on the swappable-pointer idiom the teacher captures in
// internal/xatomic.Pointer, applied here to hold a live Subscription rather
// than a generic resource handle.
type MultiSubscriber[T any] struct {
	downstream Subscriber[T]

	current   xatomic.Pointer[Subscription]
	requested int64 // atomic; total demand granted to callers of Request so far
	produced  int64 // atomic; total demand consumed by the current upstream so far
	cancelled int32 // atomic bool
}

var _ Subscription = (*MultiSubscriber[struct{}])(nil)

// NewMultiSubscriber returns a ready-to-use MultiSubscriber with no current
// upstream. downstream is the subscriber that owns this subscription, used
// to report a bad Request amount through its own OnError.
func NewMultiSubscriber[T any](downstream Subscriber[T]) *MultiSubscriber[T] {
	return &MultiSubscriber[T]{downstream: downstream}
}

// Set installs sub as the new current upstream, replacing and cancelling
// whatever subscription was previously current. The outstanding demand
// already requested of this MultiSubscriber — minus whatever the outgoing
// upstream had already produced against it — is immediately re-requested
// from sub, so a downstream subscriber sees no gap in its granted demand
// across a resubscription.
//
// If the MultiSubscriber was already cancelled, sub is cancelled instead of
// becoming current.
func (m *MultiSubscriber[T]) Set(sub Subscription) {
	if atomic.LoadInt32(&m.cancelled) != 0 {
		sub.Cancel()
		return
	}

	if old := m.current.Swap(&sub); old != nil {
		(*old).Cancel()
	}

	already := atomic.SwapInt64(&m.produced, 0)
	outstanding := produced(&m.requested, already)
	if outstanding > 0 {
		sub.Request(outstanding)
	}
}

// Request implements Subscription, forwarding to whatever upstream is
// currently installed and accumulating the total so a future Set can
// replay the unconsumed remainder. n must be > 0: a bad amount is reported
// to downstream's OnError and cancels this subscription. A Request after
// cancellation is reported through OnUnhandledError instead.
func (m *MultiSubscriber[T]) Request(n int64) {
	if atomic.LoadInt32(&m.cancelled) != 0 {
		OnUnhandledError(context.TODO(), newSubscriptionError(ErrUnsubscribedRequest))
		return
	}

	if !validateRequest(n, func(err error) {
		m.downstream.OnError(newSubscriptionError(err))
	}) {
		m.Cancel()
		return
	}

	addCap(&m.requested, n)

	if sub := m.current.Load(); sub != nil {
		(*sub).Request(n)
	}
}

// Produced records that n elements were delivered against the current
// upstream's demand. Call this from the subscriber's OnNext so Set knows
// how much of the granted demand remains outstanding at resubscription
// time.
func (m *MultiSubscriber[T]) Produced(n int64) {
	addCap(&m.produced, n)
}

// Cancel implements Subscription, cancelling whatever upstream is current
// and preventing any future Set from installing a new one.
func (m *MultiSubscriber[T]) Cancel() {
	if !atomic.CompareAndSwapInt32(&m.cancelled, 0, 1) {
		return
	}

	if sub := m.current.Load(); sub != nil {
		(*sub).Cancel()
	}
}

// IsCancelled reports whether Cancel has already been called.
func (m *MultiSubscriber[T]) IsCancelled() bool {
	return atomic.LoadInt32(&m.cancelled) != 0
}
