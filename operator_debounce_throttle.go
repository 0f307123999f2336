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
	"time"
)

// Debounce forwards a value only after s has stayed silent for window; a
// fresh value arriving before window elapses cancels the pending one. The
// delayed delivery runs on scheduler.
func Debounce[T any](ctx context.Context, scheduler *Scheduler, s Signal[T], window time.Duration) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			mu    sync.Mutex
			timer *time.Timer
		)

		sub := s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			value := e.value

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(window, func() {
				scheduler.Async(ctx, func(context.Context) {
					onEvent(valueEvent(value))
				})
			})
			mu.Unlock()
		})

		return Disposer(func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()

			sub.Dispose()
		})
	}

	return Signal[T]{core: newPlainCore(raw)}
}

// Throttle forwards at most one value per window: the first value in each
// window is forwarded immediately, later values within the same window are
// dropped unless trailing is true, in which case the last dropped value is
// forwarded once the window ends.
func Throttle[T any](ctx context.Context, scheduler *Scheduler, s Signal[T], window time.Duration, trailing bool) Signal[T] {
	raw := func(onEvent func(event[T])) Disposable {
		var (
			mu          sync.Mutex
			gateOpen    = true
			havePending bool
			pending     T
		)

		var openGate func()
		openGate = func() {
			mu.Lock()
			if havePending {
				value := pending
				havePending = false
				mu.Unlock()

				onEvent(valueEvent(value))

				time.AfterFunc(window, func() {
					scheduler.Async(ctx, func(context.Context) { openGate() })
				})

				return
			}

			gateOpen = true
			mu.Unlock()
		}

		sub := s.core.subscribe(func(e event[T]) {
			if e.kind != eventValue {
				return
			}

			mu.Lock()
			if gateOpen {
				gateOpen = false
				mu.Unlock()

				onEvent(e)

				time.AfterFunc(window, func() {
					scheduler.Async(ctx, func(context.Context) { openGate() })
				})

				return
			}

			if trailing {
				havePending = true
				pending = e.value
			}
			mu.Unlock()
		})

		return sub
	}

	return Signal[T]{core: newPlainCore(raw)}
}
