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
	"math"
	"sync/atomic"
)

// UnboundedDemand is the sentinel value meaning "no limit". Once a demand
// counter reaches it, it is absorbing: further additions are ignored and the
// counter is never decremented below it.
const UnboundedDemand int64 = math.MaxInt64

// addCap atomically adds n to the counter at addr and returns the value the
// counter held immediately before the update. The result saturates at
// UnboundedDemand: if addr already holds UnboundedDemand, it is left
// untouched and UnboundedDemand is returned. Mirrors the teacher's
// CAS-retry-loop idiom used throughout subscriberImpl's status field, but
// generalized from a tri-state status to an arbitrary non-negative counter.
func addCap(addr *int64, n int64) int64 {
	for {
		current := atomic.LoadInt64(addr)
		if current == UnboundedDemand {
			return UnboundedDemand
		}

		next := current + n
		if next < 0 || next > UnboundedDemand { // overflow or explicit unbounded request
			next = UnboundedDemand
		}

		if atomic.CompareAndSwapInt64(addr, current, next) {
			return current
		}
	}
}

// produced atomically subtracts n (the number of items actually emitted)
// from the counter at addr. It never drives the counter below zero; doing so
// would indicate a protocol violation upstream (more items produced than
// requested), so the subtraction is clamped to zero. If addr holds
// UnboundedDemand, no subtraction occurs.
func produced(addr *int64, n int64) int64 {
	for {
		current := atomic.LoadInt64(addr)
		if current == UnboundedDemand {
			return UnboundedDemand
		}

		next := current - n
		if next < 0 {
			next = 0
		}

		if atomic.CompareAndSwapInt64(addr, current, next) {
			return next
		}
	}
}

// validateRequest reports whether n is a legal request amount (strictly
// positive). math.MaxInt64 is itself a legal — and special — request, taken
// to mean "unbounded" rather than a literal count. When n is not legal, the
// bad amount is reported to onViolation (normally the subscriber's onError)
// and validateRequest returns false.
func validateRequest(n int64, onViolation func(err error)) bool {
	if n > 0 {
		return true
	}

	if onViolation != nil {
		onViolation(ErrBadRequest)
	}

	return false
}
