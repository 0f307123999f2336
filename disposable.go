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

// Disposable is an owned cancellation handle. Dispose releases the wrapped
// effect; implementations such as Disposer make repeated calls a no-op. Go
// has no deterministic drop and this module registers no GC finalizers, so
// a handle that is dropped without calling Dispose is never disposed.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a plain func() into a Disposable. It does not
// guarantee the once-only semantics by itself; use Disposer for that.
type DisposableFunc func()

// Dispose implements Disposable.
func (f DisposableFunc) Dispose() {
	if f != nil {
		f()
	}
}

// nilDisposer is the zero-cost no-op Disposable.
type nilDisposer struct{}

func (nilDisposer) Dispose() {}

// NilDisposer is a Disposable whose Dispose is a no-op. Use it where a
// Disposable is required but there is nothing to tear down.
var NilDisposer Disposable = nilDisposer{}

// disposer wraps a closure and guarantees it runs at most once. It is
// thread-safe and re-entrant: the wrapped closure is released from the
// struct before being invoked, so a closure that calls Dispose() on its own
// owner does not deadlock and does not see itself as "still pending".
type disposer struct {
	mu sync.Mutex
	f  func()
}

// Disposer wraps f so that Dispose() invokes it at most once. A nil f
// produces a Disposable equivalent to NilDisposer.
func Disposer(f func()) Disposable {
	return &disposer{f: f}
}

func (d *disposer) Dispose() {
	d.mu.Lock()
	f := d.f
	d.f = nil
	d.mu.Unlock()

	if f != nil {
		tryCatch(f, func(err error) {
			onUnhandledError("Disposer", newDisposeError(err))
		})
	}
}

// DisposeBag is an ordered, thread-safe collection of Disposables. Disposing
// the bag disposes every entry, in insertion order, outside the bag's own
// lock (so a disposed child calling back into the bag never deadlocks).
// Unlike a single-shot Disposable, a DisposeBag may be repopulated with
// Add after a Dispose call: it is a reusable lifetime scope, not a one-shot
// handle.
type DisposeBag struct {
	mu       sync.Mutex
	children []Disposable
	held     []any
}

// NewDisposeBag creates an empty, ready-to-use DisposeBag. The zero value is
// also ready to use; this constructor exists for symmetry with the rest of
// the construction surface.
func NewDisposeBag() *DisposeBag {
	return &DisposeBag{}
}

// Add appends d to the bag. A nil d is ignored. Add is safe to call even
// while the bag is concurrently being disposed; in that case d is simply
// appended to whatever the next generation of the bag holds (DisposeBag does
// not auto-dispose late additions the way a single-shot Disposable would,
// because it is explicitly reusable).
func (b *DisposeBag) Add(d Disposable) {
	if d == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.children = append(b.children, d)
}

// Hold retains an arbitrary reference until the next Dispose call, then
// releases it. Useful for keeping a value (a buffer, a file handle wrapper)
// alive for exactly as long as the bag's owner is alive.
func (b *DisposeBag) Hold(obj any) {
	if obj == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.held = append(b.held, obj)
}

// InnerBag creates a child DisposeBag, registers it in this bag, and returns
// it. Disposing the parent disposes the child; the child can also be
// disposed independently to release just its own nested resources early.
func (b *DisposeBag) InnerBag() *DisposeBag {
	child := NewDisposeBag()
	b.Add(child)

	return child
}

// Dispose atomically snapshots the bag's children and held references,
// resets the bag to empty, then disposes each child in insertion order
// outside the lock. A Dispose call that is re-entered from within one of
// the children's own Dispose (e.g. a child's teardown disposing a sibling
// through the parent) observes an already-empty bag for that inner call.
func (b *DisposeBag) Dispose() {
	b.mu.Lock()
	children := b.children
	b.children = nil
	b.held = nil
	b.mu.Unlock()

	for _, child := range children {
		d := child

		tryCatch(func() {
			d.Dispose()
		}, func(err error) {
			onUnhandledError("DisposeBag", newDisposeError(err))
		})
	}
}

// IsEmpty reports whether the bag currently holds no disposables.
func (b *DisposeBag) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.children) == 0
}

// Lifetime is a Disposable that also exposes its own disposal as a Finite
// signal. It stands in for "the tied object was destroyed" in a language
// with neither weak references nor a deallocation hook: the owner of some
// object disposes its Lifetime (directly, or by placing it in the owning
// object's own DisposeBag) when that object goes away, rather than this
// package relying on a GC finalizer for correctness (see Disposable's own
// doc comment).
type Lifetime struct {
	mu    sync.Mutex
	ended bool
	cb    *Callbacker[struct{}]
}

// NewLifetime creates a Lifetime that has not yet ended.
func NewLifetime() *Lifetime {
	return &Lifetime{cb: NewCallbacker[struct{}]()}
}

// Dispose ends the lifetime. Idempotent: only the first call has any
// effect.
func (l *Lifetime) Dispose() {
	l.mu.Lock()
	if l.ended {
		l.mu.Unlock()
		return
	}

	l.ended = true
	l.mu.Unlock()

	l.cb.CallAll(struct{}{})
}

// Ended returns a Finite signal that emits no values and ends (with a nil
// error) the moment l is disposed, or immediately if l has already ended by
// the time of subscription.
func (l *Lifetime) Ended() FiniteSignal[struct{}] {
	raw := func(onEvent func(event[struct{}])) Disposable {
		l.mu.Lock()
		already := l.ended
		l.mu.Unlock()

		if already {
			onEvent(endEvent[struct{}](nil))

			return NilDisposer
		}

		return l.cb.AddCallback(func(struct{}) { onEvent(endEvent[struct{}](nil)) })
	}

	return FiniteSignal[struct{}]{Signal[struct{}]{core: newPlainCore(raw)}}
}
