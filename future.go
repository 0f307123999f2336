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
	"sync"
)

// Result is the success-or-failure payload a Future completes with.
type Result[V any] struct {
	Value V
	Err   error
}

// Success wraps v as a successful Result.
func Success[V any](v V) Result[V] { return Result[V]{Value: v} }

// Failure wraps err as a failed Result.
func Failure[V any](err error) Result[V] { return Result[V]{Err: err} }

// IsSuccess reports whether the Result represents success.
func (r Result[V]) IsSuccess() bool { return r.Err == nil }

// Mover owns the construction closure behind a Future created with
// NewFuture, so repetition operators (see future_combinators.go) can obtain
// a fresh execution of the same body instead of re-using a single-shot
// Future a second time.
type Mover[V any] struct {
	recreate func() *Future[V]
}

// MoveInside returns f unchanged when m is nil or carries no construction
// closure; otherwise it ignores f and returns a freshly constructed clone
// of the original future (a new execution of its body).
func (m *Mover[V]) MoveInside(f *Future[V]) *Future[V] {
	if m == nil || m.recreate == nil {
		return f
	}

	return m.recreate()
}

// Future is a one-shot asynchronous result. It starts in a pending state
// with no listeners, transitions to having listeners as soon as any
// continuation (OnValue, Map, FlatMap, ...) is attached, and completes
// exactly once.
type Future[V any] struct {
	mu sync.Mutex

	completed bool
	result    Result[V]

	onComplete    []func(Result[V])
	listenerCount int

	upstream    Disposable
	cancelHooks []func()
}

// addListener registers handler to run once f completes, or immediately
// (synchronously) if f has already completed. Every continuation-producing
// operator in this package routes through here, which is what makes
// Cancel's "no-op once there are listeners" rule apply uniformly.
func (f *Future[V]) addListener(handler func(Result[V])) {
	f.mu.Lock()

	if f.completed {
		r := f.result
		f.mu.Unlock()
		handler(r)

		return
	}

	f.listenerCount++
	f.onComplete = append(f.onComplete, handler)
	f.mu.Unlock()
}

func (f *Future[V]) complete(r Result[V]) {
	f.mu.Lock()

	if f.completed {
		f.mu.Unlock()
		return
	}

	f.completed = true
	f.result = r
	handlers := f.onComplete
	f.onComplete = nil
	up := f.upstream
	f.upstream = nil
	f.mu.Unlock()

	for _, h := range handlers {
		handler := h

		tryCatch(func() {
			handler(r)
		}, func(err error) {
			onUnhandledError("Future.complete", err)
		})
	}

	if up != nil {
		up.Dispose()
	}
}

// cancelInternal is Cancel's implementation. bypassVeto lets internal
// composite-future plumbing (see future_combinators.go) tear down an
// upstream future even though chaining has attached a listener to it -
// the public Cancel() always goes through with bypassVeto=false.
func (f *Future[V]) cancelInternal(bypassVeto bool) bool {
	f.mu.Lock()

	if f.completed {
		f.mu.Unlock()
		return false
	}

	if !bypassVeto && f.listenerCount > 0 {
		f.mu.Unlock()
		return false
	}

	hooks := f.cancelHooks
	f.cancelHooks = nil
	f.mu.Unlock()

	for _, h := range hooks {
		hook := h

		tryCatch(hook, func(err error) {
			onUnhandledError("Future.Cancel", err)
		})
	}

	f.complete(Failure[V](ErrAborted))

	return true
}

// Cancel aborts f if it is still pending and has no listeners attached; it
// is a no-op if f has already completed or anything (OnValue, Map, a
// further chained operator, ...) has already started listening for its
// result.
func (f *Future[V]) Cancel() bool {
	return f.cancelInternal(false)
}

// Dispose implements Disposable by cancelling f, so a Future can be placed
// directly into a DisposeBag.
func (f *Future[V]) Dispose() {
	f.cancelInternal(false)
}

// addCancelHook registers fn to run if f is cancelled before completing. If
// f has already completed, fn never runs.
func (f *Future[V]) addCancelHook(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.completed {
		return
	}

	f.cancelHooks = append(f.cancelHooks, fn)
}

// Completed creates a Future that is already in the completed state.
func Completed[V any](r Result[V]) *Future[V] {
	return &Future[V]{completed: true, result: r}
}

// FutureValue creates an already-completed successful Future.
func FutureValue[V any](v V) *Future[V] {
	return Completed(Success(v))
}

// FutureError creates an already-completed failed Future.
func FutureError[V any](err error) *Future[V] {
	return Completed(Failure[V](err))
}

// NeverFuture creates a Future that will never complete and has no
// upstream to cancel.
func NeverFuture[V any]() *Future[V] {
	return &Future[V]{}
}

// NewFuture asynchronously schedules body on scheduler. body must
// eventually call the complete function it is given exactly once (further
// calls are ignored); the Disposable it returns is stored as the upstream
// cancellation handle and disposed when the future completes or is
// cancelled. mover lets repetition operators obtain a fresh execution of
// body (see Mover).
func NewFuture[V any](ctx context.Context, scheduler *Scheduler, body func(ctx context.Context, complete func(Result[V]), mover *Mover[V]) Disposable) *Future[V] {
	f := &Future[V]{}

	mover := &Mover[V]{}
	mover.recreate = func() *Future[V] {
		return NewFuture(ctx, scheduler, body)
	}

	scheduler.Async(ctx, func(ctx context.Context) {
		var once sync.Once

		completeFn := func(r Result[V]) {
			once.Do(func() { f.complete(r) })
		}

		var up Disposable

		tryCatch(func() {
			up = body(ctx, completeFn, mover)
		}, func(err error) {
			completeFn(Failure[V](err))
		})

		f.mu.Lock()
		if f.completed {
			f.mu.Unlock()

			if up != nil {
				up.Dispose()
			}

			return
		}

		f.upstream = up
		f.mu.Unlock()
	})

	return f
}
