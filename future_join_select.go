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

// Joined holds the two successful values produced by Join.
type Joined[A, B any] struct {
	First  A
	Second B
}

// Join succeeds with both a's and b's values once both succeed, and fails
// as soon as either fails. If cancelNonCompleted is true, the side that
// hasn't completed yet is cancelled as soon as the other side fails.
func Join[A, B any](a *Future[A], b *Future[B], cancelNonCompleted bool) *Future[Joined[A, B]] {
	out := &Future[Joined[A, B]]{}
	out.upstream = Disposer(func() {
		a.cancelInternal(true)
		b.cancelInternal(true)
	})

	var (
		mu       sync.Mutex
		av       A
		bv       B
		haveA    bool
		haveB    bool
		finished bool
	)

	finishFailure := func(err error) {
		mu.Lock()
		if finished {
			mu.Unlock()
			return
		}

		finished = true
		mu.Unlock()

		if cancelNonCompleted {
			a.cancelInternal(true)
			b.cancelInternal(true)
		}

		out.complete(Failure[Joined[A, B]](err))
	}

	a.addListener(func(r Result[A]) {
		if !r.IsSuccess() {
			finishFailure(r.Err)
			return
		}

		mu.Lock()
		av = r.Value
		haveA = true
		ready := haveA && haveB
		done := finished
		mu.Unlock()

		if !done && ready {
			mu.Lock()
			finished = true
			mu.Unlock()

			out.complete(Success(Joined[A, B]{First: av, Second: bv}))
		}
	})

	b.addListener(func(r Result[B]) {
		if !r.IsSuccess() {
			finishFailure(r.Err)
			return
		}

		mu.Lock()
		bv = r.Value
		haveB = true
		ready := haveA && haveB
		done := finished
		mu.Unlock()

		if !done && ready {
			mu.Lock()
			finished = true
			mu.Unlock()

			out.complete(Success(Joined[A, B]{First: av, Second: bv}))
		}
	})

	return out
}

// JoinAll succeeds with every future's value, in order, once all succeed;
// fails as soon as any one fails, cancelling the rest.
func JoinAll[V any](futures ...*Future[V]) *Future[[]V] {
	out := &Future[[]V]{}
	out.upstream = Disposer(func() {
		for _, f := range futures {
			f.cancelInternal(true)
		}
	})

	n := len(futures)

	if n == 0 {
		out.complete(Success([]V{}))
		return out
	}

	var (
		mu       sync.Mutex
		values   = make([]V, n)
		remain   = n
		finished bool
	)

	for i, f := range futures {
		idx := i

		f.addListener(func(r Result[V]) {
			mu.Lock()
			if finished {
				mu.Unlock()
				return
			}

			if !r.IsSuccess() {
				finished = true
				mu.Unlock()

				for _, other := range futures {
					other.cancelInternal(true)
				}

				out.complete(Failure[[]V](r.Err))

				return
			}

			values[idx] = r.Value
			remain--
			done := remain == 0
			mu.Unlock()

			if done {
				mu.Lock()
				if finished {
					mu.Unlock()
					return
				}

				finished = true
				mu.Unlock()

				out.complete(Success(values))
			}
		})
	}

	return out
}

// Selected tags which side of a Select finished first.
type Selected[A, B any] struct {
	IsFirst bool
	First   A
	Second  B
}

// Select completes with whichever of a, b finishes first, cancelling the
// loser.
func Select[A, B any](a *Future[A], b *Future[B]) *Future[Selected[A, B]] {
	out := &Future[Selected[A, B]]{}
	out.upstream = Disposer(func() {
		a.cancelInternal(true)
		b.cancelInternal(true)
	})

	var (
		mu   sync.Mutex
		done bool
	)

	a.addListener(func(r Result[A]) {
		mu.Lock()
		if done {
			mu.Unlock()
			return
		}

		done = true
		mu.Unlock()

		b.cancelInternal(true)

		if !r.IsSuccess() {
			out.complete(Failure[Selected[A, B]](r.Err))
			return
		}

		out.complete(Success(Selected[A, B]{IsFirst: true, First: r.Value}))
	})

	b.addListener(func(r Result[B]) {
		mu.Lock()
		if done {
			mu.Unlock()
			return
		}

		done = true
		mu.Unlock()

		a.cancelInternal(true)

		if !r.IsSuccess() {
			out.complete(Failure[Selected[A, B]](r.Err))
			return
		}

		out.complete(Success(Selected[A, B]{IsFirst: false, Second: r.Value}))
	})

	return out
}

// SelectAll completes with the index and value of whichever future in
// futures finishes first, cancelling the rest.
func SelectAll[V any](futures ...*Future[V]) *Future[Indexed[V]] {
	out := &Future[Indexed[V]]{}
	out.upstream = Disposer(func() {
		for _, f := range futures {
			f.cancelInternal(true)
		}
	})

	var (
		mu   sync.Mutex
		done bool
	)

	for i, f := range futures {
		idx := i

		f.addListener(func(r Result[V]) {
			mu.Lock()
			if done {
				mu.Unlock()
				return
			}

			done = true
			mu.Unlock()

			for j, other := range futures {
				if j != idx {
					other.cancelInternal(true)
				}
			}

			if !r.IsSuccess() {
				out.complete(Failure[Indexed[V]](r.Err))
				return
			}

			out.complete(Success(Indexed[V]{Index: idx, Value: r.Value}))
		})
	}

	return out
}

// MapToFuture runs f serially over items, short-circuiting on the first
// error.
func MapToFuture[T, R any](items []T, f func(T) *Future[R]) *Future[[]R] {
	out := &Future[[]R]{}

	results := make([]R, 0, len(items))

	var step func(i int)

	step = func(i int) {
		if i >= len(items) {
			out.complete(Success(results))
			return
		}

		cur := f(items[i])

		out.upstream = Disposer(func() { cur.cancelInternal(true) })

		cur.addListener(func(r Result[R]) {
			if !r.IsSuccess() {
				out.complete(Failure[[]R](r.Err))
				return
			}

			results = append(results, r.Value)
			step(i + 1)
		})
	}

	step(0)

	return out
}

// MapToFutureResults runs f serially over items, collecting every
// individual Result instead of short-circuiting on failure.
func MapToFutureResults[T, R any](items []T, f func(T) *Future[R]) *Future[[]Result[R]] {
	out := &Future[[]Result[R]]{}

	results := make([]Result[R], 0, len(items))

	var step func(i int)

	step = func(i int) {
		if i >= len(items) {
			out.complete(Success(results))
			return
		}

		cur := f(items[i])

		out.upstream = Disposer(func() { cur.cancelInternal(true) })

		cur.addListener(func(r Result[R]) {
			results = append(results, r)
			step(i + 1)
		})
	}

	step(0)

	return out
}
