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

// newComposite builds an output future whose cancellation (direct, or via
// its own upstream being disposed) forces f to cancel even though f now has
// a listener attached - the one place this package deliberately bypasses
// the listener-count cancellation veto, since otherwise no chained operator
// could ever be torn down early.
func newComposite[V, R any](f *Future[V]) *Future[R] {
	out := &Future[R]{}
	out.upstream = Disposer(func() {
		f.cancelInternal(true)
	})

	return out
}

// OnResult taps f's result without changing it.
func (f *Future[V]) OnResult(fn func(Result[V])) *Future[V] {
	out := newComposite[V, V](f)

	f.addListener(func(r Result[V]) {
		tryCatch(func() { fn(r) }, func(err error) { onUnhandledError("Future.OnResult", err) })
		out.complete(r)
	})

	return out
}

// OnValue taps f's successful value, if any.
func (f *Future[V]) OnValue(fn func(V)) *Future[V] {
	return f.OnResult(func(r Result[V]) {
		if r.IsSuccess() {
			fn(r.Value)
		}
	})
}

// OnError taps f's failure, if any (including cancellation, which fails
// with ErrAborted).
func (f *Future[V]) OnError(fn func(error)) *Future[V] {
	return f.OnResult(func(r Result[V]) {
		if !r.IsSuccess() {
			fn(r.Err)
		}
	})
}

// Always runs fn on completion regardless of outcome, including
// cancellation.
func (f *Future[V]) Always(fn func()) *Future[V] {
	return f.OnResult(func(Result[V]) { fn() })
}

// OnErrorOrCancel is an alias of OnError kept for symmetry with the wider
// combinator surface: cancellation always completes with ErrAborted, so the
// two are the same observation.
func (f *Future[V]) OnErrorOrCancel(fn func(error)) *Future[V] {
	return f.OnError(fn)
}

// OnCancel runs fn if f is cancelled before it completes; it does not run
// if f completes normally (including with a failure produced by the body
// itself rather than by cancellation).
func (f *Future[V]) OnCancel(fn func()) *Future[V] {
	f.addCancelHook(fn)

	return f
}

// MapFuture transforms f's success value through g; g panicking is reported
// as a failure of the resulting future. Named distinctly from the Signal
// Map in operator_map.go, which this package also exports.
func MapFuture[V, R any](f *Future[V], g func(V) R) *Future[R] {
	out := newComposite[V, R](f)

	f.addListener(func(r Result[V]) {
		if !r.IsSuccess() {
			out.complete(Failure[R](r.Err))
			return
		}

		var (
			mapped  R
			failure error
		)

		tryCatch(func() { mapped = g(r.Value) }, func(err error) { failure = err })

		if failure != nil {
			out.complete(Failure[R](failure))
			return
		}

		out.complete(Success(mapped))
	})

	return out
}

// MapError transforms f's failure through g, leaving success untouched.
func MapError[V any](f *Future[V], g func(error) error) *Future[V] {
	out := newComposite[V, V](f)

	f.addListener(func(r Result[V]) {
		if r.IsSuccess() {
			out.complete(r)
			return
		}

		out.complete(Failure[V](g(r.Err)))
	})

	return out
}

// MapResult transforms f's whole Result through g.
func MapResult[V, R any](f *Future[V], g func(Result[V]) Result[R]) *Future[R] {
	out := newComposite[V, R](f)

	f.addListener(func(r Result[V]) {
		var mapped Result[R]

		tryCatch(func() { mapped = g(r) }, func(err error) { mapped = Failure[R](err) })

		out.complete(mapped)
	})

	return out
}

// FlatMap continues f's success with a new future produced by g, failing
// with f's own error otherwise.
func FlatMap[V, R any](f *Future[V], g func(V) *Future[R]) *Future[R] {
	out := newComposite[V, R](f)

	f.addListener(func(r Result[V]) {
		if !r.IsSuccess() {
			out.complete(Failure[R](r.Err))
			return
		}

		var inner *Future[R]

		tryCatch(func() { inner = g(r.Value) }, func(err error) {
			out.complete(Failure[R](err))
		})

		if inner == nil {
			return
		}

		out.upstream = Disposer(func() {
			f.cancelInternal(true)
			inner.cancelInternal(true)
		})

		inner.addListener(func(ir Result[R]) { out.complete(ir) })
	})

	return out
}

// FlatMapError continues f's failure with a new future produced by g,
// passing success straight through.
func FlatMapError[V any](f *Future[V], g func(error) *Future[V]) *Future[V] {
	out := newComposite[V, V](f)

	f.addListener(func(r Result[V]) {
		if r.IsSuccess() {
			out.complete(r)
			return
		}

		inner := g(r.Err)

		out.upstream = Disposer(func() {
			f.cancelInternal(true)
			inner.cancelInternal(true)
		})

		inner.addListener(func(ir Result[V]) { out.complete(ir) })
	})

	return out
}

// FlatMapResult continues f's result (success or failure) with a new
// future produced by g.
func FlatMapResult[V, R any](f *Future[V], g func(Result[V]) *Future[R]) *Future[R] {
	out := newComposite[V, R](f)

	f.addListener(func(r Result[V]) {
		inner := g(r)

		out.upstream = Disposer(func() {
			f.cancelInternal(true)
			inner.cancelInternal(true)
		})

		inner.addListener(func(ir Result[R]) { out.complete(ir) })
	})

	return out
}

// Delay postpones f's completion by d (a non-positive d is a no-op).
func Delay[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], d time.Duration) *Future[V] {
	if d <= 0 {
		return f
	}

	out := newComposite[V, V](f)

	f.addListener(func(r Result[V]) {
		scheduler.AsyncAfter(ctx, d, func(context.Context) {
			out.complete(r)
		})
	})

	return out
}

// PerformWhile invokes work while f is still pending (after an optional
// delay), disposing the Disposable work returns as soon as f completes.
func PerformWhile[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], delay time.Duration, work func() Disposable) *Future[V] {
	out := newComposite[V, V](f)

	start := func() {
		handle := work()

		f.addListener(func(r Result[V]) {
			handle.Dispose()
			out.complete(r)
		})
	}

	if delay <= 0 {
		start()
	} else {
		scheduler.AsyncAfter(ctx, delay, func(context.Context) { start() })
	}

	return out
}

// Abort completes f (forwarded to the returned future) with ErrAborted as
// soon as any of cancelSignals completes, cancelling f itself in that case.
func Abort[V any](f *Future[V], cancelSignals ...*Future[struct{}]) *Future[V] {
	out := newComposite[V, V](f)

	var done bool

	finishAborted := func() {
		if done {
			return
		}

		done = true
		f.cancelInternal(true)
		out.complete(Failure[V](ErrAborted))
	}

	for _, sig := range cancelSignals {
		sig.addListener(func(Result[struct{}]) { finishAborted() })
	}

	f.addListener(func(r Result[V]) {
		if done {
			return
		}

		done = true
		out.complete(r)
	})

	return out
}

// SucceedAfter races f against a timer: if after elapses first, the returned
// future succeeds with v instead of whatever f would have produced,
// cancelling f. Named distinctly from the Fail/Succeed-less FiniteSignal
// constructors in signal.go, which this package also exports.
func SucceedAfter[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], v V, after time.Duration) *Future[V] {
	return raceReplace(ctx, scheduler, f, after, Success(v))
}

// FailAfter races f against a timer: if after elapses first, the returned
// future fails with err instead, cancelling f.
func FailAfter[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], err error, after time.Duration) *Future[V] {
	return raceReplace(ctx, scheduler, f, after, Failure[V](err))
}

// ReplaceAfter races f against a timer: if after elapses first, the
// returned future completes with replacement instead, cancelling f.
func ReplaceAfter[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], replacement Result[V], after time.Duration) *Future[V] {
	return raceReplace(ctx, scheduler, f, after, replacement)
}

func raceReplace[V any](ctx context.Context, scheduler *Scheduler, f *Future[V], after time.Duration, replacement Result[V]) *Future[V] {
	out := newComposite[V, V](f)

	var done bool

	timerDisposable := scheduler.DisposableAsyncAfter(ctx, after, func(context.Context) {
		if done {
			return
		}

		done = true
		f.cancelInternal(true)
		out.complete(replacement)
	})

	f.addListener(func(r Result[V]) {
		if done {
			return
		}

		done = true
		timerDisposable.Dispose()
		out.complete(r)
	})

	return out
}
