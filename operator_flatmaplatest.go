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

// FlatMapLatest maps each value of s to an inner Finite signal via f, and
// forwards the inner signal's values - but only from the most recently
// produced inner signal. Whenever s emits again, the previous inner
// subscription is disposed before the new one is subscribed to, so a slow
// inner producer can never deliver a stale value after it has been
// superseded.
func FlatMapLatest[T, R any](s Signal[T], f func(T) FiniteSignal[R]) Signal[R] {
	return flatMapLatest(s, f, func(err error) {
		if err != nil {
			onUnhandledError("FlatMapLatest", err)
		}
	})
}

// FlatMapLatestIgnoringErrors is FlatMapLatest for an inner constructor that
// can fail: an inner End carrying a non-nil error is silently discarded
// instead of being logged, for call sites where failure is an expected,
// routine outcome (e.g. a cancelled lookup superseded by a newer one).
func FlatMapLatestIgnoringErrors[T, R any](s Signal[T], f func(T) FiniteSignal[R]) Signal[R] {
	return flatMapLatest(s, f, func(error) {})
}

func flatMapLatest[T, R any](s Signal[T], f func(T) FiniteSignal[R], onInnerErr func(error)) Signal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		var (
			mu         sync.Mutex
			innerSub   Disposable
			generation uint64
		)

		outer := s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			mu.Lock()
			generation++
			gen := generation
			prev := innerSub
			innerSub = nil
			mu.Unlock()

			if prev != nil {
				prev.Dispose()
			}

			inner := f(e.value)

			sub := inner.Subscribe(func(v R) {
				mu.Lock()
				current := gen == generation
				mu.Unlock()

				if current {
					onEvent(valueEvent(v))
				}
			}, func(err error) {
				mu.Lock()
				current := gen == generation
				mu.Unlock()

				if current {
					onInnerErr(err)
				}
			})

			mu.Lock()
			if gen == generation {
				innerSub = sub
				mu.Unlock()
			} else {
				mu.Unlock()
				sub.Dispose()
			}
		})

		return Disposer(func() {
			mu.Lock()
			sub := innerSub
			innerSub = nil
			mu.Unlock()

			if sub != nil {
				sub.Dispose()
			}

			outer.Dispose()
		})
	}

	return Signal[R]{core: newPlainCore(raw)}
}
