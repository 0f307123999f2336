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

// Merge interleaves the values of every signal in sources into one Plain
// signal, in whatever order they actually arrive.
func Merge[T any](sources ...Signal[T]) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		subs := make([]Disposable, 0, len(sources))

		for _, src := range sources {
			subs = append(subs, src.core.subscribe(func(e event[T]) {
				if e.kind == eventValue {
					onEvent(e)
				}
			}))
		}

		return Disposer(func() {
			for _, sub := range subs {
				sub.Dispose()
			}
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// CombineLatest2 emits a pair whenever either source changes, once both have
// produced at least one value.
func CombineLatest2[A, B any](a ReadSignal[A], b ReadSignal[B]) ReadSignal[Pair2[A, B]] {
	cb := NewCallbacker[Pair2[A, B]]()

	get := func() Pair2[A, B] {
		return Pair2[A, B]{First: a.Value(), Second: b.Value()}
	}

	a.Subscribe(func(A) { cb.CallAll(get()) })
	b.Subscribe(func(B) { cb.CallAll(get()) })

	return FromGetterCallbacker(get, cb)
}

// Pair2 holds the latest values from two combined Read signals.
type Pair2[A, B any] struct {
	First  A
	Second B
}

// Pair3 holds the latest values from three combined Read signals.
type Pair3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// CombineLatest3 is CombineLatest2 extended to three sources.
func CombineLatest3[A, B, C any](a ReadSignal[A], b ReadSignal[B], c ReadSignal[C]) ReadSignal[Pair3[A, B, C]] {
	cb := NewCallbacker[Pair3[A, B, C]]()

	get := func() Pair3[A, B, C] {
		return Pair3[A, B, C]{First: a.Value(), Second: b.Value(), Third: c.Value()}
	}

	a.Subscribe(func(A) { cb.CallAll(get()) })
	b.Subscribe(func(B) { cb.CallAll(get()) })
	c.Subscribe(func(C) { cb.CallAll(get()) })

	return FromGetterCallbacker(get, cb)
}

// CombineLatestAll is the sequence form of CombineLatest2/CombineLatest3:
// any number of same-typed Read signals combined into one Read signal of
// their latest values, in source order, changing whenever any source does.
// An empty sources reads as a permanently empty slice.
func CombineLatestAll[T any](sources ...ReadSignal[T]) ReadSignal[[]T] {
	cb := NewCallbacker[[]T]()

	get := func() []T {
		out := make([]T, len(sources))
		for i, s := range sources {
			out[i] = s.Value()
		}

		return out
	}

	for _, s := range sources {
		s.Subscribe(func(T) { cb.CallAll(get()) })
	}

	return FromGetterCallbacker(get, cb)
}

// WithLatestFrom combines each value of trigger with the current value of
// other, sampled at the moment trigger fires. other's own changes never
// cause an emission by themselves.
func WithLatestFrom[T, O, R any](trigger Signal[T], other ReadSignal[O], combine func(T, O) R) Signal[R] {
	raw := func(onEvent func(event[R])) Disposable {
		return trigger.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			onEvent(valueEvent(combine(e.value, other.Value())))
		})
	}

	return Signal[R]{core: newPlainCore(raw)}
}

// WithWeak pairs each value of s with obj, producing a Finite signal that
// ends (gracefully) the moment lifetime is disposed. Go has neither weak
// references nor a deallocation hook to observe directly, so lifetime
// stands in for "obj was destroyed": whoever owns obj is expected to
// Dispose its Lifetime (directly, or from its own teardown/DisposeBag) when
// obj itself goes out of scope.
func WithWeak[T, O any](s Signal[T], obj O, lifetime *Lifetime) FiniteSignal[Pair2[T, O]] {
	raw := func(onEvent func(event[Pair2[T, O]])) Disposable {
		subSource := s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			onEvent(valueEvent(Pair2[T, O]{First: e.value, Second: obj}))
		})

		subLifetime := lifetime.Ended().core.subscribe(func(e event[struct{}]) {
			if e.kind == eventEnd {
				onEvent(endEvent[Pair2[T, O]](nil))
			}
		})

		return Disposer(func() {
			subSource.Dispose()
			subLifetime.Dispose()
		})
	}

	return FiniteSignal[Pair2[T, O]]{Signal[Pair2[T, O]]{core: newPlainCore(raw)}}
}

// MergeFinite interleaves values from every Finite signal in sources. It
// ends gracefully once every source has ended without error, or terminates
// immediately - disposing every other still-running source - the instant
// any one source ends with a non-nil error.
func MergeFinite[T any](sources ...FiniteSignal[T]) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			mu        sync.Mutex
			remaining = len(sources)
			finished  bool
		)

		subs := make([]Disposable, 0, len(sources))

		finishWithError := func(err error) {
			mu.Lock()
			if finished {
				mu.Unlock()
				return
			}

			finished = true
			snapshot := append([]Disposable(nil), subs...)
			mu.Unlock()

			onEvent(endEvent[T](err))

			for _, sub := range snapshot {
				sub.Dispose()
			}
		}

		for _, src := range sources {
			sub := src.core.subscribe(func(e event[T]) {
				switch e.kind {
				case eventValue:
					onEvent(e)
				case eventEnd:
					if e.err != nil {
						finishWithError(e.err)
						return
					}

					mu.Lock()
					if finished {
						mu.Unlock()
						return
					}

					remaining--
					done := remaining == 0
					finished = done
					mu.Unlock()

					if done {
						onEvent(endEvent[T](nil))
					}
				}
			})

			mu.Lock()
			alreadyFinished := finished
			if !alreadyFinished {
				subs = append(subs, sub)
			}
			mu.Unlock()

			if alreadyFinished {
				sub.Dispose()
			}
		}

		return Disposer(func() {
			mu.Lock()
			finished = true
			snapshot := append([]Disposable(nil), subs...)
			mu.Unlock()

			for _, sub := range snapshot {
				sub.Dispose()
			}
		})
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}
