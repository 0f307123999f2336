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

import (
	"context"
	"time"
)

// OnResultRepeat re-runs f (via mover.MoveInside, i.e. a fresh execution of
// its original construction closure) while predicate(result) is true, up to
// max iterations (max <= 0 means unbounded). Each iteration waits delay
// before re-running. It is implemented as an explicit loop rather than
// recursive composite-building, so a future that happens to complete
// synchronously every time cannot overflow the stack.
func OnResultRepeat[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], mover *Mover[V], delay time.Duration, max int, predicate func(Result[V]) bool) *Future[V] {
	out := &Future[V]{}

	var step func(cur *Future[V], iteration int)

	step = func(cur *Future[V], iteration int) {
		out.upstream = Disposer(func() { cur.cancelInternal(true) })

		cur.addListener(func(r Result[V]) {
			again := predicate(r) && (max <= 0 || iteration+1 < max)

			if !again {
				out.complete(r)
				return
			}

			run := func() {
				next := mover.MoveInside(cur)
				step(next, iteration+1)
			}

			if delay <= 0 {
				run()
			} else {
				scheduler.AsyncAfter(ctx, delay, func(context.Context) { run() })
			}
		})
	}

	step(f, 0)

	return out
}

// OnErrorRepeat re-runs f while it keeps failing and predicate(err) is
// true, up to max iterations (max <= 0 means unbounded); a success ends the
// loop immediately.
func OnErrorRepeat[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], mover *Mover[V], delay time.Duration, max int, predicate func(error) bool) *Future[V] {
	return OnResultRepeat(ctx, scheduler, f, mover, delay, max, func(r Result[V]) bool {
		return !r.IsSuccess() && predicate(r.Err)
	})
}

// RepeatAndCollect runs f exactly n times in sequence (via mover), waiting
// delay between runs, and completes with the successful values collected in
// order; it stops and fails at the first failure.
func RepeatAndCollect[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], mover *Mover[V], n int, delay time.Duration) *Future[[]V] {
	out := &Future[[]V]{}

	results := make([]V, 0, n)

	var step func(cur *Future[V], iteration int)

	step = func(cur *Future[V], iteration int) {
		out.upstream = Disposer(func() { cur.cancelInternal(true) })

		cur.addListener(func(r Result[V]) {
			if !r.IsSuccess() {
				out.complete(Failure[[]V](r.Err))
				return
			}

			results = append(results, r.Value)

			if iteration+1 >= n {
				out.complete(Success(results))
				return
			}

			run := func() {
				next := mover.MoveInside(cur)
				step(next, iteration+1)
			}

			if delay <= 0 {
				run()
			} else {
				scheduler.AsyncAfter(ctx, delay, func(context.Context) { run() })
			}
		})
	}

	if n <= 0 {
		out.complete(Success(results))
		return out
	}

	step(f, 0)

	return out
}
