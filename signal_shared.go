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

// sharedCollector installs at most one upstream subscription regardless of
// how many listeners register against it: the first listener triggers the
// upstream subscribe, the last one to dispose tears it down. Values received
// before a listener joins are not replayed to it - only subsequent Value/End
// events are forwarded, matching a plain broadcast subject.
type sharedCollector[T any] struct {
	mu sync.Mutex

	upstreamSubscribe subscribeFunc[T]
	upstream          Disposable
	listeners         map[CallbackKey]func(event[T])

	ended  bool
	endErr error
}

func newSharedCollector[T any](upstreamSubscribe subscribeFunc[T]) *sharedCollector[T] {
	return &sharedCollector[T]{
		upstreamSubscribe: upstreamSubscribe,
		listeners:         make(map[CallbackKey]func(event[T])),
	}
}

// addListener is used as the raw subscription function for the shared
// wrapper's own CoreSignal: dispatch already synthesizes this listener's
// Initial, so addListener only ever needs to forward Value/End.
func (c *sharedCollector[T]) addListener(onEvent func(event[T])) Disposable {
	c.mu.Lock()

	if c.ended {
		err := c.endErr
		c.mu.Unlock()
		onEvent(endEvent[T](err))

		return NilDisposer
	}

	key := nextCallbackKey()
	c.listeners[key] = onEvent
	startUpstream := len(c.listeners) == 1
	c.mu.Unlock()

	if startUpstream {
		c.startUpstream()
	}

	return Disposer(func() {
		c.removeListener(key)
	})
}

func (c *sharedCollector[T]) startUpstream() {
	upstream := c.upstreamSubscribe(func(e event[T]) {
		switch e.kind {
		case eventValue:
			c.broadcast(e)
		case eventEnd:
			c.finish(e)
		}
	})

	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		upstream.Dispose()

		return
	}
	c.upstream = upstream
	c.mu.Unlock()
}

func (c *sharedCollector[T]) broadcast(e event[T]) {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range snapshot {
		fn(e)
	}
}

func (c *sharedCollector[T]) finish(e event[T]) {
	c.mu.Lock()
	c.ended = true
	c.endErr = e.err
	snapshot := c.snapshotLocked()
	c.listeners = make(map[CallbackKey]func(event[T]))
	c.upstream = nil
	c.mu.Unlock()

	for _, fn := range snapshot {
		fn(e)
	}
}

func (c *sharedCollector[T]) snapshotLocked() []func(event[T]) {
	out := make([]func(event[T]), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}

	return out
}

func (c *sharedCollector[T]) removeListener(key CallbackKey) {
	c.mu.Lock()
	delete(c.listeners, key)

	var upstream Disposable
	if len(c.listeners) == 0 && c.upstream != nil {
		upstream = c.upstream
		c.upstream = nil
	}
	c.mu.Unlock()

	if upstream != nil {
		upstream.Dispose()
	}
}

// Shared multiplexes a Plain signal so at most one upstream subscription is
// installed no matter how many listeners subscribe to the result.
func Shared[T any](s Signal[T]) Signal[T] {
	collector := newSharedCollector(s.core.subscribe)

	return Signal[T]{core: newPlainCore[T](collector.addListener)}
}

// SharedRead multiplexes a Read signal's subscription the same way Shared
// does; Value() is untouched; it always reads straight through to the
// original getter regardless of how many listeners are subscribed.
func SharedRead[T any](s ReadSignal[T]) ReadSignal[T] {
	collector := newSharedCollector(s.Signal.core.subscribe)

	return ReadSignal[T]{
		Signal: Signal[T]{core: newReadableCore(s.getter, collector.addListener)},
		getter: s.getter,
	}
}

// SharedFinite multiplexes a Finite signal's subscription. A listener that
// joins after the upstream has already ended receives End immediately,
// without ever seeing the values that preceded it.
func SharedFinite[T any](s FiniteSignal[T]) FiniteSignal[T] {
	collector := newSharedCollector(s.Signal.core.subscribe)

	return FiniteSignal[T]{Signal[T]{core: newPlainCore[T](collector.addListener)}}
}
