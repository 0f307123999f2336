// Copyright 2025 The Flow-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flow

// Distinct drops consecutive values considered equal by eq, comparing each
// new value against the last one that was actually forwarded.
func Distinct[T any](s Signal[T], eq func(a, b T) bool) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			have bool
			last T
		)

		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if have && eq(last, e.value) {
				return
			}

			have = true
			last = e.value

			onEvent(e)
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// DistinctFinite is Distinct for a Finite signal.
func DistinctFinite[T any](s FiniteSignal[T], eq func(a, b T) bool) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			have bool
			last T
		)

		return s.core.subscribe(func(e event[T]) {
			switch e.kind {
			case eventValue:
				if have && eq(last, e.value) {
					return
				}

				have = true
				last = e.value

				onEvent(e)
			case eventEnd:
				onEvent(e)
			}
		})
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// Pair is the two-value tuple produced by LatestTwo.
type Pair[T any] struct {
	Previous T
	Current  T
}

// LatestTwo emits the previous and current value together, starting from
// the second value s produces (the first value only seeds Previous and is
// not itself forwarded).
func LatestTwo[T any](s Signal[T]) Signal[Pair[T]] {
	raw := func(onEvent func(event[Pair[T]])) Disposable {
		var (
			have bool
			prev T
		)

		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if !have {
				have = true
				prev = e.value

				return
			}

			onEvent(valueEvent(Pair[T]{Previous: prev, Current: e.value}))
			prev = e.value
		})
	}

	return Signal[Pair[T]]{core: newPlainCore(raw)}
}
