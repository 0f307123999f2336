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

import "time"

// Every stream in this package is one of four capability shapes:
//
//	Shape      Readable current value   Writable current value   May terminate
//	Signal     no                       no                       no
//	ReadSignal yes                      no                       no
//	ReadWriteSignal yes                 yes                      no
//	FiniteSignal no                     no                       yes
//
// Rather than modelling this as a runtime tag or a type parameter threaded
// through one generic CoreSignal, each shape is its own wrapper type built
// by embedding: ReadSignal embeds Signal, ReadWriteSignal embeds ReadSignal,
// and FiniteSignal embeds Signal with a different Subscribe signature. The
// capability differences show up as compile-time method sets instead of
// runtime checks.

// coreSignal is the single piece of state every stream variant is built
// from: a subscription function satisfying the dispatch contract. Every
// public signal type below is a thin, capability-specific wrapper around a
// *coreSignal.
type coreSignal[T any] struct {
	subscribe subscribeFunc[T]
}

// Signal is a Plain stream: no current value, never terminates. It is the
// base embedded in every other signal variant.
type Signal[T any] struct {
	core *coreSignal[T]
}

// Subscribe registers onValue to be called for every value the signal
// produces, returning a Disposable that unregisters it. onValue must not
// block for long: it runs on whichever goroutine produced the value.
func (s Signal[T]) Subscribe(onValue func(T)) Disposable {
	if s.core == nil {
		return NilDisposer
	}

	return s.core.subscribe(func(e event[T]) {
		if e.kind == eventValue {
			onValue(e.value)
		}
	})
}

// ReadSignal is a stream with a readable current value that never
// terminates.
type ReadSignal[T any] struct {
	Signal[T]
	getter func() T
}

// Value returns the signal's current value. It is cheap: it never
// subscribes, it calls the getter supplied at construction (or threaded
// through by whichever operator produced this signal).
func (s ReadSignal[T]) Value() T {
	return s.getter()
}

// ReadWriteSignal is a stream with a readable and writable current value
// that never terminates.
type ReadWriteSignal[T any] struct {
	ReadSignal[T]
	setter func(T)
}

// Set calls the setter the signal was built with. It does not broadcast v
// itself, and FromGetterSetterCallbacker adds no broadcast either:
// subscribers see the new value only when the setter (or another writer)
// calls CallAll on the backing callbacker.
func (s ReadWriteSignal[T]) Set(v T) {
	s.setter(v)
}

// FiniteSignal is a stream with no current value that may terminate with an
// End event, carried as an error (nil for graceful completion).
type FiniteSignal[T any] struct {
	Signal[T]
}

// Subscribe registers onValue and onEnd, returning a Disposable that
// unregisters both. onEnd is called at most once, after which no further
// calls to onValue occur on this subscription.
func (s FiniteSignal[T]) Subscribe(onValue func(T), onEnd func(error)) Disposable {
	if s.core == nil {
		return NilDisposer
	}

	return s.core.subscribe(func(e event[T]) {
		switch e.kind {
		case eventValue:
			onValue(e.value)
		case eventEnd:
			if onEnd != nil {
				onEnd(e.err)
			}
		}
	})
}

// newPlainCore builds a coreSignal from a raw subscription function that
// never needs an Initial payload (Plain/Finite kinds).
func newPlainCore[T any](raw rawSubscribe[T]) *coreSignal[T] {
	return &coreSignal[T]{
		subscribe: dispatch(func() event[T] { return initialEvent[T]() }, raw),
	}
}

// newReadableCore builds a coreSignal whose Initial carries getter's
// snapshot, as required for Read/ReadWrite kinds.
func newReadableCore[T any](getter func() T, raw rawSubscribe[T]) *coreSignal[T] {
	return &coreSignal[T]{
		subscribe: dispatch(func() event[T] { return initialValueEvent(getter()) }, raw),
	}
}

// NewSignal builds a Plain signal directly from a subscription function
// expressed in terms of the value type, for adapting an external event
// source (see the plugins/ packages) without reaching into this package's
// internal three-shape event protocol.
func NewSignal[T any](producer func(onValue func(T)) Disposable) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return producer(func(v T) { onEvent(valueEvent(v)) })
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// NewFiniteSignal builds a Finite signal from a subscription function
// expressed in terms of the externally-visible Event type, for adapting an
// external event source that can also terminate.
func NewFiniteSignal[T any](producer func(onEvent func(Event[T])) Disposable) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return producer(func(e Event[T]) { onEvent(e.toInternal()) })
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// FromPlainCallbacker builds a Plain signal that re-broadcasts whatever cb
// is called with. Each subscription registers its own callback on cb, so
// cb may be shared by other producers/consumers independently of this
// signal.
func FromPlainCallbacker[T any](cb *Callbacker[T]) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return cb.AddCallback(func(v T) { onEvent(valueEvent(v)) })
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// FromGetterCallbacker builds a Read signal: getter supplies the current
// value, cb broadcasts changes to it.
func FromGetterCallbacker[T any](getter func() T, cb *Callbacker[T]) ReadSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return cb.AddCallback(func(v T) { onEvent(valueEvent(v)) })
	}

	return ReadSignal[T]{
		Signal[T]: Signal[T]{core: newReadableCore(getter, raw)},
		getter:    getter,
	}
}

// FromGetterSetterCallbacker builds a ReadWrite signal: getter/setter
// access the current value, cb broadcasts the changes that setter (or any
// other writer sharing the same callbacker) publishes on it.
func FromGetterSetterCallbacker[T any](getter func() T, setter func(T), cb *Callbacker[T]) ReadWriteSignal[T] {
	return ReadWriteSignal[T]{
		ReadSignal: FromGetterCallbacker(getter, cb),
		setter:     setter,
	}
}

// FromEventCallbacker builds a Finite signal from a callbacker broadcasting
// externally-visible Events (see event.go), terminating when an End event
// is broadcast.
func FromEventCallbacker[T any](cb *Callbacker[Event[T]]) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		return cb.AddCallback(func(e Event[T]) { onEvent(e.toInternal()) })
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// Just returns a Plain signal that emits v once to each subscriber, then
// holds - it never ends, and never emits a second time on that same
// subscription.
func Just[T any](v T) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		onEvent(valueEvent(v))

		return NilDisposer
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// Fail returns a Finite signal that ends immediately with err and never
// emits a value.
func Fail[T any](err error) FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		onEvent(endEvent[T](err))

		return NilDisposer
	}

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// Never returns a Finite signal that emits nothing and never ends.
func Never[T any]() FiniteSignal[T] {
	raw := func(onEvent func(event[T])) Disposable { return NilDisposer }

	return FiniteSignal[T]{Signal[T]{core: newPlainCore(raw)}}
}

// Constant returns a Read signal whose current value is always v; it
// broadcasts nothing, since v can never change.
func Constant[T any](v T) ReadSignal[T] {
	raw := func(onEvent func(event[T])) Disposable { return NilDisposer }

	return ReadSignal[T]{
		Signal[T]: Signal[T]{core: newReadableCore(func() T { return v }, raw)},
		getter:    func() T { return v },
	}
}

// Every returns a Plain signal that ticks with the current time every
// interval, starting after the first interval elapses. Each subscription
// owns an independent ticker goroutine, stopped on Dispose.
func Every(interval time.Duration) Signal[time.Time] {
	raw := func(onEvent func(event[time.Time])) Disposable {
		ticker := time.NewTicker(interval)
		done := make(chan struct{})

		go func() {
			for {
				select {
				case t := <-ticker.C:
					onEvent(valueEvent(t))
				case <-done:
					return
				}
			}
		}()

		return Disposer(func() {
			ticker.Stop()
			close(done)
		})
	}

	return Signal[time.Time]{core: newPlainCore(raw)}
}

// After returns a Finite signal that emits the current time once, after
// delay elapses, then ends. Disposing before the timer fires cancels it.
func After(delay time.Duration) FiniteSignal[time.Time] {
	raw := func(onEvent func(event[time.Time])) Disposable {
		timer := time.AfterFunc(delay, func() {
			onEvent(valueEvent(time.Now()))
			onEvent(endEvent[time.Time](nil))
		})

		return Disposer(func() {
			timer.Stop()
		})
	}

	return FiniteSignal[time.Time]{Signal[time.Time]{core: newPlainCore(raw)}}
}
