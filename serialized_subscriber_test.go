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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// collectingSubscriber records every signal delivered to it, guarded by a
// mutex so tests can safely assert on it from the main goroutine even when
// fed from a worker.
type collectingSubscriber[T any] struct {
	mu        sync.Mutex
	sub       Subscription
	values    []T
	err       error
	completed bool
}

func (c *collectingSubscriber[T]) OnSubscribe(subscription Subscription) {
	c.mu.Lock()
	c.sub = subscription
	c.mu.Unlock()
}

func (c *collectingSubscriber[T]) OnNext(value T) {
	c.mu.Lock()
	c.values = append(c.values, value)
	c.mu.Unlock()
}

func (c *collectingSubscriber[T]) OnError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *collectingSubscriber[T]) OnComplete() {
	c.mu.Lock()
	c.completed = true
	c.mu.Unlock()
}

func (c *collectingSubscriber[T]) snapshot() ([]T, error, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.values...), c.err, c.completed
}

func TestSerializedSubscriber_deliversInOrder(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	s := NewSerializedSubscriber[int](context.Background(), downstream)

	s.OnSubscribe(CancelledSubscription)
	s.OnNext(1)
	s.OnNext(2)
	s.OnNext(3)
	s.OnComplete()

	values, err, completed := downstream.snapshot()
	is.Equal([]int{1, 2, 3}, values)
	is.Nil(err)
	is.True(completed)
}

func TestSerializedSubscriber_dropsSignalsAfterTerminal(t *testing.T) {
	is := assert.New(t)

	restore := GetOnDroppedNotification()
	defer SetOnDroppedNotification(restore)

	var dropped []string
	SetOnDroppedNotification(func(ctx context.Context, n fmt.Stringer) {
		dropped = append(dropped, n.String())
	})

	downstream := &collectingSubscriber[int]{}
	s := NewSerializedSubscriber[int](context.Background(), downstream)

	s.OnComplete()
	s.OnNext(1) // after terminal: dropped, not delivered

	values, _, completed := downstream.snapshot()
	is.Empty(values)
	is.True(completed)
	is.Equal([]string{"Next(1)"}, dropped)
}

func TestSerializedSubscriber_errorThenCompleteOnlyFirstWins(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	downstream := &collectingSubscriber[int]{}
	s := NewSerializedSubscriber[int](context.Background(), downstream)

	s.OnError(assert.AnError)
	s.OnComplete()

	_, err, completed := downstream.snapshot()
	is.Equal(assert.AnError, err)
	is.False(completed)
}
