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

package testing

import (
	"context"

	"github.com/samber/ro"
)

// AssertSpec is an interface that defines the methods to assert the behavior
// of a publisher. It is inspired by Flux's StepVerifier.
//
// Implementing this interface is optional. It is used to provide a more
// fluent API across different testing frameworks.
type AssertSpec[T any] interface {
	Source(source ro.Publisher[T]) AssertSpec[T]

	// Request sets how much demand Verify requests from the subscription
	// before observing any signal. Defaults to ro.UnboundedDemand when never
	// called. Calling it lets a test assert on a publisher's behavior under
	// bounded demand, such as an iterable publisher only emitting up to the
	// requested amount.
	Request(n int64) AssertSpec[T]

	ExpectNext(value T, msgAndArgs ...any) AssertSpec[T]
	ExpectNextSeq(items ...T) AssertSpec[T]
	ExpectError(err error, msgAndArgs ...any) AssertSpec[T]
	ExpectComplete(msgAndArgs ...any) AssertSpec[T]
	Verify()
	VerifyWithContext(ctx context.Context)
}
