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
	"github.com/samber/ro/internal/xsync"
)

// Arbiter is a Subscription that may be handed to a downstream subscriber
// before the actual upstream Subscription exists yet. It accumulates any
// Request calls made in the meantime and replays their sum onto the real
// subscription the moment one is set via SetSubscription. It also accepts a
// Cancel at any point, even before a subscription has been set, and makes
// sure that subscription is cancelled immediately once it does arrive.
//
// Arbiter reports a bad Request amount to downstream directly rather than
// through the global OnUnhandledError hook, the same way every other
// Subscription in this package does. A Request arriving after cancellation
// is reported through OnUnhandledError as ErrUnsubscribedRequest.
//
// Grounded on the finalizer-accumulation pattern used by the teacher's
// subscriptionImpl to queue teardown logic registered before the underlying
// resource existed, generalized here from "queued close callbacks" to
// "queued demand".
type Arbiter[T any] struct {
	downstream Subscriber[T]

	upstream  xatomic.Pointer[Subscription]
	mu        xsync.Mutex
	requested int64 // accumulated demand not yet forwarded; guarded by mu
	cancelled int32 // atomic bool
}

var _ Subscription = (*Arbiter[struct{}])(nil)

// NewArbiter returns a ready-to-use Arbiter with no upstream subscription set
// yet. downstream is the subscriber that owns this arbiter's subscription,
// used to report a bad Request amount through its own OnError.
func NewArbiter[T any](downstream Subscriber[T]) *Arbiter[T] {
	return &Arbiter[T]{downstream: downstream, mu: xsync.NewMutexWithLock()}
}

// SetSubscription installs the real upstream Subscription. If the arbiter
// was already cancelled, sub is cancelled immediately instead of being
// retained. Otherwise, any demand accumulated from Request calls made
// before this point is forwarded to sub right away. At most one
// subscription should ever be installed; a second call replaces the first
// without cancelling it, mirroring how the deferred-arbiter pattern is used
// purely for first-subscription bootstrapping, not for resubscription (see
// MultiSubscriber for that).
func (a *Arbiter[T]) SetSubscription(sub Subscription) {
	if atomic.LoadInt32(&a.cancelled) != 0 {
		sub.Cancel()
		return
	}

	a.upstream.Store(&sub)

	a.mu.Lock()
	pending := a.requested
	a.requested = 0
	a.mu.Unlock()

	if pending > 0 {
		sub.Request(pending)
	}
}

// Request implements Subscription. Before an upstream subscription is set,
// the demand is accumulated; afterwards it is forwarded directly. n must be
// > 0: a bad amount is reported to downstream's OnError and cancels the
// arbiter. A Request after cancellation is reported through
// OnUnhandledError instead.
func (a *Arbiter[T]) Request(n int64) {
	if atomic.LoadInt32(&a.cancelled) != 0 {
		OnUnhandledError(context.TODO(), newSubscriptionError(ErrUnsubscribedRequest))
		return
	}

	if !validateRequest(n, func(err error) {
		a.downstream.OnError(newSubscriptionError(err))
	}) {
		a.Cancel()
		return
	}

	if sub := a.upstream.Load(); sub != nil {
		(*sub).Request(n)
		return
	}

	a.mu.Lock()
	addCap(&a.requested, n)
	a.mu.Unlock()
}

// Cancel implements Subscription. It is idempotent and safe to call before
// an upstream subscription has been set.
func (a *Arbiter[T]) Cancel() {
	if !atomic.CompareAndSwapInt32(&a.cancelled, 0, 1) {
		return
	}

	if sub := a.upstream.Load(); sub != nil {
		(*sub).Cancel()
	}
}

// IsCancelled reports whether Cancel has already been called.
func (a *Arbiter[T]) IsCancelled() bool {
	return atomic.LoadInt32(&a.cancelled) != 0
}
