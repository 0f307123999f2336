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

// AtValue runs f for every value of s, then forwards it unchanged. Useful
// for logging/instrumentation without breaking a chained pipeline.
func AtValue[T any](s Signal[T], f func(T)) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind == eventValue {
				f(e.value)
			}

			onEvent(e)
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// AtEnd runs f when s ends, then forwards the End unchanged.
func AtEnd[T any](s FiniteSignal[T], f func(error)) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind == eventEnd {
				f(e.err)
			}

			onEvent(e)
		})
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// Collect accumulates every value of s into a slice, emitting the whole
// slice once as s ends, immediately followed by s's own End.
func Collect[T any](s FiniteSignal[T]) FiniteSignal[[]T] {
	raw := func(onEvent func(event[[]T])) Disposable {
		var acc []T

		return s.core.subscribe(func(e event[T]) {
			switch e.kind {
			case eventValue:
				acc = append(acc, e.value)
			case eventEnd:
				onEvent(valueEvent(acc))
				onEvent(endEvent[[]T](e.err))
			}
		})
	}

	return FiniteSignal[[]T]{Signal[[]T]{core: newPlainCore(raw)}}
}
