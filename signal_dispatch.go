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

// rawSubscribe is the shape every signal constructor and operator ultimately
// bottoms out on: register onEvent, get a Disposable back. It only ever
// emits eventValue and eventEnd - eventInitial is synthesized by dispatch,
// never produced directly by a raw subscription function.
type rawSubscribe[T any] func(onEvent func(event[T])) Disposable

// subscribeFunc is the fully-dispatched shape exposed by CoreSignal: it
// satisfies the full §4.4.1 contract (exactly one Initial before any
// Value/End, at most one End, no Value after End, FIFO re-entrancy queueing,
// automatic self-disposal on End).
type subscribeFunc[T any] func(onEvent func(event[T])) Disposable

// dispatch wraps raw so the result satisfies the subscription contract:
//
//  1. Exactly one Initial is delivered before any Value/End. initial is
//     called once per subscription to produce it; if raw fires Value/End
//     events synchronously during its own first invocation (before
//     returning its Disposable), those are buffered and replayed *after*
//     Initial, preserving "Initial first" without losing any of them.
//  2. Exclusivity: if raw (or something it calls) re-enters onEvent while a
//     previous event from the same subscription is still being delivered to
//     the caller's callback, the new event is queued and drained in FIFO
//     order once the outer call returns, instead of being delivered
//     re-entrantly. This makes recursive emission safe to author against.
//  3. End is terminal: once delivered, no further events reach the caller's
//     callback, and the subscription disposes itself (and its upstream)
//     automatically.
func dispatch[T any](initial func() event[T], raw rawSubscribe[T]) subscribeFunc[T] {
	return func(onEvent func(event[T])) Disposable {
		d := &dispatchState[T]{
			onEvent:           onEvent,
			inFirstInvocation: true,
		}

		upstream := raw(d.push)

		d.mu.Lock()
		d.inFirstInvocation = false
		buffered := d.firstInvocationValues
		d.firstInvocationValues = nil
		disposedEarly := d.disposed
		d.mu.Unlock()

		if disposedEarly {
			upstream.Dispose()
			return NilDisposer
		}

		d.deliverOrQueue(initial())

		for _, e := range buffered {
			d.deliverOrQueue(e)
		}

		d.mu.Lock()
		d.upstream = upstream
		alreadyClosed := d.closed
		d.mu.Unlock()

		if alreadyClosed {
			upstream.Dispose()
		}

		return Disposer(func() {
			d.disposeSelf()
		})
	}
}

type dispatchState[T any] struct {
	mu sync.Mutex

	onEvent func(event[T])

	inFirstInvocation     bool
	firstInvocationValues []event[T]

	draining bool
	queue    []event[T]

	closed   bool
	disposed bool
	upstream Disposable
}

// push is the callback handed to raw; it is the only way events enter the
// dispatcher.
func (d *dispatchState[T]) push(e event[T]) {
	d.mu.Lock()
	if d.inFirstInvocation {
		d.firstInvocationValues = append(d.firstInvocationValues, e)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.deliverOrQueue(e)
}

func (d *dispatchState[T]) deliverOrQueue(e event[T]) {
	d.mu.Lock()
	if d.disposed || d.closed {
		d.mu.Unlock()
		onDroppedNotification("CoreSignal", e.kind.String())
		return
	}

	if d.draining {
		d.queue = append(d.queue, e)
		d.mu.Unlock()
		return
	}

	d.draining = true
	d.mu.Unlock()

	cur := e

	for {
		d.deliverOne(cur)

		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}

		cur = d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
	}
}

func (d *dispatchState[T]) deliverOne(e event[T]) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		onDroppedNotification("CoreSignal", e.kind.String())
		return
	}

	if e.kind == eventEnd {
		d.closed = true
	}
	d.mu.Unlock()

	tryCatch(func() {
		d.onEvent(e)
	}, func(err error) {
		onUnhandledError("CoreSignal.Subscribe", err)
	})

	if e.kind == eventEnd {
		d.disposeSelf()
	}
}

func (d *dispatchState[T]) disposeSelf() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}

	d.disposed = true
	upstream := d.upstream
	d.mu.Unlock()

	if upstream != nil {
		upstream.Dispose()
	}
}
