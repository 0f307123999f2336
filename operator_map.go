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

// Map transforms every value of s through f, preserving Plain shape.
func Map[T, R any](s Signal[T], f func(T) R) Signal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind == eventValue {
				onEvent(valueEvent(f(e.value)))
			}
		})
	}

	return Signal[R]{core: newPlainCore(raw)}
}

// MapRead transforms a Read signal's value (both current and future) through
// f, preserving readability.
func MapRead[T, R any](s ReadSignal[T], f func(T) R) ReadSignal[R] {
	getter := func() R { return f(s.Value()) }

	raw := func(onEvent func(event[R])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind == eventValue {
				onEvent(valueEvent(f(e.value)))
			}
		})
	}

	return ReadSignal[R]{Signal[R]{core: newReadableCore(getter, raw)}, getter}
}

// MapFinite transforms a Finite signal's values through f, passing End
// through unchanged.
func MapFinite[T, R any](s FiniteSignal[T], f func(T) R) FiniteSignal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			switch e.kind {
			case eventValue:
				onEvent(valueEvent(f(e.value)))
			case eventEnd:
				onEvent(endEvent[R](e.err))
			}
		})
	}

	return FiniteSignal[R]{Signal[R]{core: newPlainCore(raw)}}
}

// TryMap transforms every value of s through f, demoting the output to
// Finite: the first time f returns an error (or panics), that error is
// reported as the output's End and no further values are forwarded.
func TryMap[T, R any](s Signal[T], f func(T) (R, error)) FiniteSignal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		var sub Disposable

		sub = s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			var (
				mapped R
				failed error
			)

			tryCatchError(func() error {
				v, err := f(e.value)
				mapped = v

				return err
			}, func(err error) { failed = err })

			if failed != nil {
				onEvent(endEvent[R](failed))

				if sub != nil {
					sub.Dispose()
				}

				return
			}

			onEvent(valueEvent(mapped))
		})

		return sub
	}

	return FiniteSignal[R]{Signal[R]{core: newPlainCore(raw)}}
}

// Filter keeps only the values of s for which pred returns true.
func Filter[T any](s Signal[T], pred func(T) bool) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind == eventValue && pred(e.value) {
				onEvent(e)
			}
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// FilterFinite is Filter for a Finite signal; End always passes through.
func FilterFinite[T any](s FiniteSignal[T], pred func(T) bool) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			switch e.kind {
			case eventValue:
				if pred(e.value) {
					onEvent(e)
				}
			case eventEnd:
				onEvent(e)
			}
		})
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// CompactMap transforms values through f, dropping any for which f's second
// return value is false - a combined map+filter for optional projections.
func CompactMap[T, R any](s Signal[T], f func(T) (R, bool)) Signal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		return s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			if r, ok := f(e.value); ok {
				onEvent(valueEvent(r))
			}
		})
	}

	return Signal[R]{core: newPlainCore(raw)}
}

// ToVoid discards every value of s, keeping only its occurrence.
func ToVoid[T any](s Signal[T]) Signal[struct{}] {
	return Map(s, func(T) struct{} { return struct{}{} })
}

// StartWith prepends vs, in order, as immediately-delivered first values
// ahead of whatever s itself produces. Unlike Initial, these values are real
// Value events observed by Subscribe's onValue.
func StartWith[T any](s Signal[T], vs ...T) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		for _, v := range vs {
			onEvent(valueEvent(v))
		}

		return s.core.subscribe(onEvent)
	}

	return Signal[T]{core: newPlainCore(raw)}
}
