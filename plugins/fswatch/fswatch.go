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

// Package fswatch adapts fsnotify into a flow.FiniteSignal, so filesystem
// change notifications compose with the rest of the transform algebra
// instead of being consumed through fsnotify's own channel pair directly.
package fswatch

import (
	"github.com/fsnotify/fsnotify"

	flow "github.com/iZettle/flow-go"
)

// Watch starts watching paths and returns a Finite signal of fsnotify
// events. Each subscription owns an independent *fsnotify.Watcher; the
// signal ends (with the watcher's own error, if any) when the watcher is
// closed, which happens automatically on Dispose.
func Watch(paths ...string) flow.FiniteSignal[fsnotify.Event] {
	return flow.NewFiniteSignal(func(onEvent func(flow.Event[fsnotify.Event])) flow.Disposable {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			onEvent(flow.NewEndEvent[fsnotify.Event](err))

			return flow.NilDisposer
		}

		for _, p := range paths {
			if err := watcher.Add(p); err != nil {
				onEvent(flow.NewEndEvent[fsnotify.Event](err))
				watcher.Close()

				return flow.NilDisposer
			}
		}

		done := make(chan struct{})

		go func() {
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}

					onEvent(flow.NewValueEvent(ev))
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}

					onEvent(flow.NewEndEvent[fsnotify.Event](err))
					watcher.Close()

					return
				case <-done:
					return
				}
			}
		}()

		return flow.Disposer(func() {
			close(done)
			watcher.Close()
		})
	})
}
