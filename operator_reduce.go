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

// Reduce folds every value of s into an accumulator, starting at seed, and
// republishes the running accumulator as a Read signal's current value.
func Reduce[T, A any](s Signal[T], seed A, f func(acc A, v T) A) ReadSignal[A] {
	cb := NewCallbacker[A]()

	acc := seed

	s.Subscribe(func(v T) {
		acc = f(acc, v)
		cb.CallAll(acc)
	})

	return FromGetterCallbacker(func() A { return acc }, cb)
}

// Indexed pairs a value with its 0-based index (see Enumerate and SelectAll).
type Indexed[T any] struct {
	Index int
	Value T
}

// Enumerate pairs every value of s with its 0-based occurrence index.
func Enumerate[T any](s Signal[T]) Signal[Indexed[T]] {
	i := 0

	return Map(s, func(v T) Indexed[T] {
		idx := i
		i++

		return Indexed[T]{Index: idx, Value: v}
	})
}

// Buffer collects s's values into a slice of size n and emits the slice
// once it fills, then starts a fresh one.
func Buffer[T any](s Signal[T], n int) Signal[[]T] {
	raw := func(onEvent func(event[[]T])) Disposable {
		buf := make([]T, 0, n)

		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			buf = append(buf, e.value)

			if len(buf) >= n {
				full := buf
				buf = make([]T, 0, n)
				onEvent(valueEvent(full))
			}
		})
	}

	return Signal[[]T]{core: newPlainCore(raw)}
}

// Contains returns a Finite signal that ends with true on the first value
// of s satisfying pred, or false once s ends without ever satisfying it.
func Contains[T any](s FiniteSignal[T], pred func(T) bool) FiniteSignal[bool] {
	raw := func(onEvent func(event[bool])) Disposable {
		var sub Disposable

		sub = s.core.subscribe(func(e event[T]) {
			switch e.kind {
			case eventValue:
				if pred(e.value) {
					onEvent(valueEvent(true))
					onEvent(endEvent[bool](nil))

					if sub != nil {
						sub.Dispose()
					}
				}
			case eventEnd:
				if e.err != nil {
					onEvent(endEvent[bool](e.err))

					return
				}

				onEvent(valueEvent(false))
				onEvent(endEvent[bool](nil))
			}
		})

		return sub
	}

	return FiniteSignal[bool]{Signal[bool]{core: newPlainCore(raw)}}
}

// AllSatisfy returns a Finite signal that ends with false on the first value
// of s failing pred, or true once s ends with every value having satisfied
// it.
func AllSatisfy[T any](s FiniteSignal[T], pred func(T) bool) FiniteSignal[bool] {
	foundCounterexample := Contains(s, func(v T) bool { return !pred(v) })

	return MapFinite(foundCounterexample, func(found bool) bool { return !found })
}
