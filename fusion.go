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

// FusionMode negotiates, between two adjacent stages of a pipeline, whether
// they can bypass the request/onNext protocol and instead let the
// downstream stage pull values directly out of the upstream's internal
// queue via SynchronousSubscription. This avoids the overhead of a Request
// call and a matching OnNext call per element for operators that are
// already synchronous and queue-like (an iterable publisher, most notably).
type FusionMode uint8

const (
	// FusionNone means no fusion is established; elements flow through the
	// ordinary OnNext/Request protocol.
	FusionNone FusionMode = iota

	// FusionSync means the two stages negotiated a fully synchronous
	// connection: the downstream stage drives the exchange entirely through
	// SynchronousSubscription.Poll, and Request/OnNext are not used at all.
	FusionSync

	// FusionAsync means the upstream stage exposes a SynchronousSubscription
	// but delivery is still driven by asynchronous OnNext calls; the
	// downstream stage uses Poll only to drain what is already queued once
	// it has been notified via OnNext that something is available.
	FusionAsync
)

// String implements fmt.Stringer for FusionMode, used by test failure
// messages and by debug logging.
func (m FusionMode) String() string {
	switch m {
	case FusionNone:
		return "None"
	case FusionSync:
		return "Sync"
	case FusionAsync:
		return "Async"
	}

	panic("you shall not pass")
}

// SynchronousSubscription is the capability a Subscription offers when it
// can be drained synchronously instead of only pushing through OnNext. A
// downstream subscriber that recognizes this interface (by type-asserting
// the Subscription it is handed in OnSubscribe) may call Poll directly,
// skipping Request entirely for the fused portion of the pipeline.
type SynchronousSubscription[T any] interface {
	Subscription

	// RequestFusion offers participation in fusion at the given mode and
	// returns the mode actually granted, which may be FusionNone if this
	// subscription cannot support what was requested.
	RequestFusion(mode FusionMode) FusionMode

	// IsEmpty reports whether Poll would currently return zero, false.
	IsEmpty() bool

	// Poll returns the next queued element, if any. The zero value and
	// false means nothing is currently available, which is not the same as
	// completion — the caller must still wait for OnComplete/OnError unless
	// the subscription also reports completion through some other channel
	// (IterablePublisher, for instance, reports an exhausted iterator only
	// through IsEmpty returning true and does not call OnComplete in fused
	// mode).
	Poll() (value T, ok bool)

	// Clear discards any queued elements without delivering them. Called
	// when a downstream subscriber cancels or errors and the in-flight
	// queue must be abandoned.
	Clear()

	// Size reports how many elements are currently queued. Purely advisory;
	// used by tests and by prefetch heuristics, never required for
	// correctness.
	Size() int
}
