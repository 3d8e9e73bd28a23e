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

// ConditionalSubscriber is a Subscriber that can report, per element,
// whether it actually consumed the value handed to it. An operator sitting
// between two stages (a filter, for instance) can use TryOnNext to avoid
// requesting a replacement element from upstream when it rejects one: if
// TryOnNext returns false, the caller is free to try the next element
// against the same unit of downstream demand instead of treating the
// demand as spent.
//
// Capability, not requirement: most subscribers only implement Subscriber.
// A stage wanting the optimization should probe for it with AsConditional
// rather than requiring it.
type ConditionalSubscriber[T any] interface {
	Subscriber[T]

	// TryOnNext offers value to the subscriber and reports whether it was
	// accepted. A false return means the value was rejected and no unit of
	// demand should be considered consumed by it.
	TryOnNext(value T) bool
}

// AsConditional probes whether s also implements ConditionalSubscriber. It
// is the standard way an operator checks for the capability before relying
// on TryOnNext instead of OnNext.
func AsConditional[T any](s Subscriber[T]) (ConditionalSubscriber[T], bool) {
	cs, ok := s.(ConditionalSubscriber[T])
	return cs, ok
}
