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

import "context"

// Publisher is a provider of a potentially unbounded number of sequenced
// elements, published according to the demand signalled by its
// Subscriber(s). A Publisher may support multiple Subscribers, each
// subscription independent of the others, though individual
// implementations (DirectProcessor, most notably) may only replay signals
// live rather than resubscribing production from the start for each
// subscriber.
type Publisher[T any] interface {
	// Subscribe registers subscriber to receive signals from this
	// Publisher. It must call subscriber.OnSubscribe exactly once, whether
	// synchronously or asynchronously, before delivering any other signal
	// — even if the publisher has nothing to produce, in which case it
	// should hand over CancelledSubscription and immediately follow with
	// OnComplete or OnError.
	Subscribe(ctx context.Context, subscriber Subscriber[T])
}

// PublisherFunc adapts a plain function into a Publisher, the way
// http.HandlerFunc adapts a function into an http.Handler.
type PublisherFunc[T any] func(ctx context.Context, subscriber Subscriber[T])

// Subscribe implements Publisher.
func (f PublisherFunc[T]) Subscribe(ctx context.Context, subscriber Subscriber[T]) {
	f(ctx, subscriber)
}

// Subscribe is a convenience wrapper equivalent to
// publisher.Subscribe(ctx, subscriber), provided for readability at call
// sites that construct the subscriber inline.
func Subscribe[T any](ctx context.Context, publisher Publisher[T], subscriber Subscriber[T]) {
	publisher.Subscribe(ctx, subscriber)
}
