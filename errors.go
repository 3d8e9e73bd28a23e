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
	"fmt"

	"github.com/samber/lo"
)

// @TODO: custom error type ?
func recoverValueToError(e any) error {
	if err, ok := e.(error); ok {
		return err
	}

	return fmt.Errorf("unexpected error: %v", e)
}

func recoverUnhandledError(cb func()) {
	lo.TryCatchWithErrorValue(
		func() error {
			cb()
			return nil
		},
		func(e any) {
			err := recoverValueToError(e)
			OnUnhandledError(context.TODO(), err)
		},
	)
}

// Protocol violations. These are the error kinds spec'd out in
// "Error handling design": invalid request amount, a second onSubscribe,
// a null value surfacing from an iterator or accumulator, and a retry-when
// selector that returns no publisher at all.
var (
	ErrBadRequest           = errors.New("ro.Subscription: request amount must be > 0")
	ErrDoubleSubscription   = errors.New("ro.Subscriber: onSubscribe called more than once")
	ErrNullElement          = errors.New("ro.IterablePublisher: iterator produced a nil element")
	ErrNullCompanion        = errors.New("ro.RetryWhen: selector returned a nil publisher")
	ErrFusionPollEmpty      = errors.New("ro.SynchronousSubscription: Poll called while IsEmpty() is true")
	ErrUnsubscribedRequest  = errors.New("ro.Subscription: request called after cancellation")
	ErrIterablePublisherNil = errors.New("ro.IterablePublisher: iterator factory returned a nil iterator")
)

func newSubscriptionError(err error) error {
	return &subscriptionError{err: err}
}

type subscriptionError struct {
	err error
}

func (e *subscriptionError) Error() string {
	return "ro.Subscription: " + e.err.Error()
}

func (e *subscriptionError) Unwrap() error {
	return e.err
}

func newPublisherError(err error) error {
	return &publisherError{err: err}
}

type publisherError struct {
	err error
}

func (e *publisherError) Error() string {
	return "ro.Publisher: " + e.err.Error()
}

func (e *publisherError) Unwrap() error {
	return e.err
}

func newSubscriberError(err error) error {
	return &subscriberError{err: err}
}

type subscriberError struct {
	err error
}

func (e *subscriberError) Error() string {
	err := "<nil>"
	if e.err != nil {
		err = e.err.Error()
	}

	return "ro.Subscriber: " + err
}

func (e *subscriberError) Unwrap() error {
	return e.err
}
