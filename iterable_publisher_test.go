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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSlice_emitsEveryElementThenCompletes(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{1, 2, 3}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()
	sub.Request(UnboundedDemand)

	values, err, completed := downstream.snapshot()
	is.Equal([]int{1, 2, 3}, values)
	is.Nil(err)
	is.True(completed)
}

func TestFromSlice_empty(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()
	sub.Request(1)

	values, err, completed := downstream.snapshot()
	is.Empty(values)
	is.Nil(err)
	is.True(completed)
}

func TestFromSlice_honorsBoundedDemand(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{1, 2, 3, 4, 5}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()

	sub.Request(2)
	values, _, completed := downstream.snapshot()
	is.Equal([]int{1, 2}, values)
	is.False(completed)

	sub.Request(3)
	values, _, completed = downstream.snapshot()
	is.Equal([]int{1, 2, 3, 4, 5}, values)
	is.True(completed)
}

func TestOf(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[string]{}
	Of("a", "b").Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()
	sub.Request(UnboundedDemand)

	values, _, completed := downstream.snapshot()
	is.Equal([]string{"a", "b"}, values)
	is.True(completed)
}

type erroringIterator struct {
	remaining int
}

func (it *erroringIterator) HasNext() bool {
	return it.remaining > 0
}

func (it *erroringIterator) Next() (int, error) {
	it.remaining--
	if it.remaining == 0 {
		return 0, errors.New("boom")
	}
	return 1, nil
}

func TestNewIterablePublisher_surfacesIteratorError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	pub := NewIterablePublisher(func() (Iterator[int], error) {
		return &erroringIterator{remaining: 2}, nil
	})
	pub.Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()
	sub.Request(UnboundedDemand)

	values, err, completed := downstream.snapshot()
	is.Equal([]int{1}, values)
	is.Error(err)
	is.False(completed)
}

func TestNewIterablePublisher_nilIteratorReported(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	pub := NewIterablePublisher(func() (Iterator[int], error) {
		return nil, nil
	})
	pub.Subscribe(context.Background(), downstream)

	_, err, _ := downstream.snapshot()
	is.ErrorIs(err, ErrIterablePublisherNil)
}

func TestIterableSubscription_fusion(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var syncSub SynchronousSubscription[int]
	probe := &fusionProbeSubscriber[int]{onSubscribe: func(s Subscription) {
		if ss, ok := s.(SynchronousSubscription[int]); ok {
			is.Equal(FusionSync, ss.RequestFusion(FusionSync))
			syncSub = ss
		}
	}}

	FromSlice([]int{10, 20}).Subscribe(context.Background(), probe)

	is.NotNil(syncSub)
	is.False(syncSub.IsEmpty())

	v, ok := syncSub.Poll()
	is.True(ok)
	is.Equal(10, v)

	v, ok = syncSub.Poll()
	is.True(ok)
	is.Equal(20, v)

	is.True(syncSub.IsEmpty())
	_, ok = syncSub.Poll()
	is.False(ok)
}

type fusionProbeSubscriber[T any] struct {
	onSubscribe func(Subscription)
}

func (f *fusionProbeSubscriber[T]) OnSubscribe(s Subscription) { f.onSubscribe(s) }
func (f *fusionProbeSubscriber[T]) OnNext(value T)             {}
func (f *fusionProbeSubscriber[T]) OnError(err error)          {}
func (f *fusionProbeSubscriber[T]) OnComplete()                {}

func TestFromSlice_badRequestReportsToDownstreamOnError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{1, 2, 3}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()

	sub.Request(0)

	values, err, completed := downstream.snapshot()
	is.Empty(values)
	is.ErrorIs(err, ErrBadRequest)
	is.False(completed)
}

func TestFromSlice_negativeRequestReportsToDownstreamOnError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{1, 2, 3}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()

	sub.Request(-1)

	values, err, completed := downstream.snapshot()
	is.Empty(values)
	is.ErrorIs(err, ErrBadRequest)
	is.False(completed)
}

func TestFromSlice_badRequestNeverRoutesToGlobalUnhandledErrorHook(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	restore := GetOnUnhandledError()
	defer SetOnUnhandledError(restore)

	var globallyReported error
	SetOnUnhandledError(func(ctx context.Context, err error) {
		globallyReported = err
	})

	downstream := &collectingSubscriber[int]{}
	FromSlice([]int{1, 2, 3}).Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()

	sub.Request(0)

	_, err, _ := downstream.snapshot()
	is.ErrorIs(err, ErrBadRequest)
	is.Nil(globallyReported)
}

// nullableIterator yields a mix of usable values and nil pointers, modeling
// an iterable source that can produce a null element partway through.
type nullableIterator struct {
	values []*int
	index  int
}

func (it *nullableIterator) HasNext() bool {
	return it.index < len(it.values)
}

func (it *nullableIterator) Next() (*int, error) {
	v := it.values[it.index]
	it.index++
	return v, nil
}

func TestIterablePublisher_nullElementStopsEmissionWithError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	one, three := 1, 3
	downstream := &collectingSubscriber[*int]{}
	pub := NewIterablePublisher(func() (Iterator[*int], error) {
		return &nullableIterator{values: []*int{&one, nil, &three}}, nil
	})
	pub.Subscribe(context.Background(), downstream)

	downstream.mu.Lock()
	sub := downstream.sub
	downstream.mu.Unlock()
	sub.Request(UnboundedDemand)

	values, err, completed := downstream.snapshot()
	is.Len(values, 1)
	is.Equal(&one, values[0])
	is.ErrorIs(err, ErrNullElement)
	is.False(completed)
}

func TestIterableSubscription_conditionalSubscriberUsesTryOnNext(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	conditional := &onlyEvenSubscriber{}
	FromSlice([]int{1, 2, 3, 4, 5}).Subscribe(context.Background(), conditional)

	conditional.mu.Lock()
	sub := conditional.sub
	conditional.mu.Unlock()
	sub.Request(UnboundedDemand)

	values, _, completed := conditional.snapshot()
	is.Equal([]int{2, 4}, values)
	is.True(completed)
}
