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

// Subscription links a Subscriber to a Publisher. A Publisher must not emit
// any Next to the subscriber it handed the Subscription to until Request
// has been called at least once; every Next it emits afterwards must be
// matched by a prior unit of outstanding demand. OnError and OnComplete need
// no demand.
//
// Request and Cancel may be called concurrently, from any goroutine,
// including from inside the subscriber's own OnNext — implementations must
// be safe for that.
type Subscription interface {
	// Request signals that the subscriber is able to accept n more elements.
	// n must be > 0; violating this is reported through the subscriber's own
	// OnError (see ErrBadRequest) rather than panicking or routed to the
	// global OnUnhandledError hook — the subscriber that made the bad request
	// is the one owed the protocol violation. Passing UnboundedDemand
	// requests an effectively unlimited stream.
	Request(n int64)

	// Cancel asks the publisher to stop sending signals. It is not required
	// to take effect synchronously, and is idempotent: cancelling twice, or
	// cancelling after termination, is a silent no-op.
	Cancel()
}

// CancelledSubscription is a Subscription that is already terminated:
// Request and Cancel are both no-ops. It is handed to a subscriber's
// OnSubscribe when a publisher must honor the calling convention but has
// nothing to run upstream of it — for example a publisher that completes
// immediately upon subscription, or a malformed subscribe attempt.
var CancelledSubscription Subscription = cancelledSubscription{}

type cancelledSubscription struct{}

func (cancelledSubscription) Request(n int64) {}
func (cancelledSubscription) Cancel()         {}
