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

import "sync"

// TakeFirst forwards s's first n values, then ends. n <= 0 ends immediately
// with no values.
func TakeFirst[T any](s Signal[T], n int) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		if n <= 0 {
			onEvent(endEvent[T](nil))

			return NilDisposer
		}

		count := 0

		var sub Disposable

		sub = s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			count++
			onEvent(e)

			if count >= n {
				onEvent(endEvent[T](nil))

				if sub != nil {
					sub.Dispose()
				}
			}
		})

		return sub
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// TakeWhile forwards values of s until pred returns false for one of them
// (exclusive), then ends.
func TakeWhile[T any](s Signal[T], pred func(T) bool) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var sub Disposable

		sub = s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if !pred(e.value) {
				onEvent(endEvent[T](nil))

				if sub != nil {
					sub.Dispose()
				}

				return
			}

			onEvent(e)
		})

		return sub
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// SkipFirst drops s's first n values, forwarding everything after.
func SkipFirst[T any](s Signal[T], n int) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		count := 0

		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if count < n {
				count++

				return
			}

			onEvent(e)
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// SkipWhile drops values of s while pred holds, forwarding the first value
// for which pred is false and everything after, regardless of pred from
// then on.
func SkipWhile[T any](s Signal[T], pred func(T) bool) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		skipping := true

		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if skipping {
				if pred(e.value) {
					return
				}

				skipping = false
			}

			onEvent(e)
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// WaitUntil buffers at most one value of s while gate reads false, releasing
// the buffered value the moment gate rises from false to true. Values
// arriving while gate already reads true pass straight through; a value
// that arrives while gate is false overwrites any value still buffered from
// before it. The result never ends on its own.
func WaitUntil[T any](s Signal[T], gate ReadSignal[bool]) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			mu       sync.Mutex
			buffered T
			have     bool
			open     = gate.Value()
		)

		subSource := s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			mu.Lock()
			if open {
				mu.Unlock()
				onEvent(e)

				return
			}

			buffered = e.value
			have = true
			mu.Unlock()
		})

		subGate := gate.core.subscribe(func(e event[bool]) {
			if e.kind != eventValue {
				return
			}

			mu.Lock()
			rising := !open && e.value
			open = e.value

			var release T
			shouldRelease := false

			if rising && have {
				release = buffered
				have = false
				shouldRelease = true
			}
			mu.Unlock()

			if shouldRelease {
				onEvent(valueEvent(release))
			}
		})

		return Disposer(func() {
			subSource.Dispose()
			subGate.Dispose()
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}
