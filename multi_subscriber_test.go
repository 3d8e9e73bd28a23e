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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiSubscriber_requestForwardsToCurrent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	first := &recordingSubscription{}
	m.Set(first)

	m.Request(3)

	is.EqualValues(3, first.requested)
}

func TestMultiSubscriber_replaysOutstandingDemandOnSwap(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	first := &recordingSubscription{}
	m.Set(first)

	m.Request(10)
	m.Produced(4) // 6 still outstanding against first

	second := &recordingSubscription{}
	m.Set(second)

	is.True(first.isCancelled())
	is.EqualValues(6, second.requested)
}

func TestMultiSubscriber_noReplayWhenFullyConsumed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	first := &recordingSubscription{}
	m.Set(first)

	m.Request(5)
	m.Produced(5)

	second := &recordingSubscription{}
	m.Set(second)

	is.EqualValues(0, second.requested)
}

// TestMultiSubscriber_outstandingDoesNotAccumulateAcrossResubscriptions
// guards the fix for Set failing to store the recomputed outstanding demand
// back into m.requested: without that store, a THIRD Set recomputes
// "outstanding" against the original total requested rather than against
// what was actually still outstanding after the second upstream, handing
// the third upstream demand nobody asked for. A single resubscription can't
// surface this, since the first Set starts from a zero baseline either way.
func TestMultiSubscriber_outstandingDoesNotAccumulateAcrossResubscriptions(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)

	first := &recordingSubscription{}
	m.Set(first)
	m.Request(10)
	m.Produced(4) // 6 outstanding against first

	second := &recordingSubscription{}
	m.Set(second)
	is.EqualValues(6, second.requested)
	m.Produced(6) // second fully consumes the replayed demand

	third := &recordingSubscription{}
	m.Set(third)
	is.EqualValues(0, third.requested)
}

func TestMultiSubscriber_cancelPropagatesAndBlocksFutureSet(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	first := &recordingSubscription{}
	m.Set(first)
	m.Cancel()

	is.True(first.isCancelled())

	second := &recordingSubscription{}
	m.Set(second)

	is.True(second.isCancelled())
}

func TestMultiSubscriber_badRequestReportsToDownstreamOnError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	first := &recordingSubscription{}
	m.Set(first)

	m.Request(0)

	_, err, _ := downstream.snapshot()
	is.ErrorIs(err, ErrBadRequest)
	is.True(first.isCancelled())
	is.True(m.IsCancelled())
}

func TestMultiSubscriber_requestAfterCancelReportsUnsubscribedRequest(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	restore := GetOnUnhandledError()
	defer SetOnUnhandledError(restore)

	var reported error
	SetOnUnhandledError(func(ctx context.Context, err error) {
		reported = err
	})

	downstream := &collectingSubscriber[int]{}
	m := NewMultiSubscriber[int](downstream)
	m.Cancel()

	m.Request(1)

	is.ErrorIs(reported, ErrUnsubscribedRequest)
}
