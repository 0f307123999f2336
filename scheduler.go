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
	"sync/atomic"
	"time"
)

func loadCancelled(flag *int32) bool { return atomic.LoadInt32(flag) != 0 }
func storeCancelled(flag *int32)     { atomic.StoreInt32(flag, 1) }

// Scheduler is an identity-comparable executor abstraction. Two Schedulers
// are the same scheduler iff they are the same *scheduler pointer; there is
// no value-equality notion for schedulers.
//
// Go has no goroutine-local storage, so the "current scheduler" bookkeeping
// that the wider corpus's operators read off a thread-local cell is instead
// carried explicitly on context.Context (see CurrentScheduler / the
// scheduler-tagged context produced by Async/Sync/Perform): the work those
// methods run receives a context that names the scheduler it runs on.
type Scheduler struct {
	name string

	// immediate marks the Immediate sentinel. IsCurrent is always true for
	// it, so Async/Sync on Immediate always run f in place and never reach
	// an executor.
	immediate bool

	// queue, when non-nil, is a serialized worker goroutine backing Async
	// and Sync. Sync submits to the same worker and blocks the caller until
	// f has run; syncMu serializes concurrent Sync callers.
	queue  chan func()
	syncMu sync.Mutex

	// runnerFn, when set (via NewScheduler), replaces the built-in channel
	// worker for Async/Sync dispatch with an application-supplied executor
	// (a UI main loop, an actor mailbox, a custom worker pool).
	runnerFn func(func())

	closeOnce sync.Once
	done      chan struct{}
}

type schedulerCtxKey struct{}
type syncSchedulerCtxKey struct{}

// newSerialScheduler creates a Scheduler backed by a single worker goroutine
// that drains a work channel in FIFO order, matching the "serialized
// executor" model of spec.md §5.
func newSerialScheduler(name string, bufferSize int) *Scheduler {
	s := &Scheduler{
		name:  name,
		queue: make(chan func(), bufferSize),
		done:  make(chan struct{}),
	}

	go s.drain()

	return s
}

// newConcurrentScheduler creates a Scheduler whose Async dispatches each
// submission onto its own goroutine, modeling an unbounded concurrent
// background executor.
func newConcurrentScheduler(name string) *Scheduler {
	return &Scheduler{name: name, done: make(chan struct{})}
}

func (s *Scheduler) drain() {
	for {
		select {
		case f, ok := <-s.queue:
			if !ok {
				return
			}

			tryCatch(f, func(err error) {
				onUnhandledError("Scheduler."+s.name, err)
			})
		case <-s.done:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case f, ok := <-s.queue:
					if !ok {
						return
					}

					tryCatch(f, func(err error) {
						onUnhandledError("Scheduler."+s.name, err)
					})
				default:
					return
				}
			}
		}
	}
}

var (
	// Immediate performs work in-line: IsCurrent is always true for it, so
	// Async and Sync run f in place on the calling goroutine and never
	// schedule anything.
	Immediate = &Scheduler{name: "immediate", immediate: true}

	// Main is the serialized scheduler conventionally bound to the
	// process's designated main executor. Applications that have their own
	// main-thread dispatcher should route Main's work onto it instead of
	// using this default serial goroutine; see NewScheduler.
	Main = newSerialScheduler("main", 64)

	// Background is a single serialized worker scheduler, analogous to a
	// dedicated background dispatch queue.
	Background = newSerialScheduler("background", 64)

	// ConcurrentBackground dispatches each submission onto its own
	// goroutine: an offload executor with no serialization guarantee
	// between submissions.
	ConcurrentBackground = newConcurrentScheduler("concurrent-background")
)

// NewScheduler wraps an arbitrary executor function as a Scheduler. Each
// call to runner is expected to eventually invoke the func() it is given,
// on whatever thread/queue the caller's infrastructure provides (a UI main
// loop, an actor mailbox, a custom worker pool). This is how an application
// plugs its own dispatch mechanism into the rest of this module.
func NewScheduler(name string, runner func(func())) *Scheduler {
	return &Scheduler{name: name, done: make(chan struct{}), runnerFn: runner}
}

func (s *Scheduler) hasRunner() bool { return s.runnerFn != nil }

// Async submits f to this scheduler. If the calling goroutine is already
// executing inside this scheduler (per ctx), f runs synchronously in place;
// otherwise it is submitted to the underlying executor and the "current
// scheduler" context value is set to this scheduler while f runs.
func (s *Scheduler) Async(ctx context.Context, f func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}

	if s.IsCurrent(ctx) {
		f(ctx)
		return
	}

	if s.immediate {
		panic("flow: Immediate scheduler cannot dispatch asynchronously; callers must check IsCurrent first")
	}

	tagged := context.WithValue(ctx, schedulerCtxKey{}, s)

	submit := func() { f(tagged) }

	switch {
	case s.hasRunner():
		s.runnerFn(submit)
	case s.queue != nil:
		s.queue <- submit
	default:
		go submit()
	}
}

// Sync submits f to this scheduler and blocks until it has run. Calling
// Sync from within the same scheduler it targets is forbidden (it would
// deadlock a serialized executor waiting on itself); in that case Sync runs
// f in place instead, matching the immediacy rule of spec.md §4.3.
func (s *Scheduler) Sync(ctx context.Context, f func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}

	if s.IsCurrent(ctx) {
		f(ctx)
		return
	}

	if s.immediate {
		panic("flow: Immediate scheduler cannot dispatch synchronously; callers must check IsCurrent first")
	}

	tagged := context.WithValue(ctx, syncSchedulerCtxKey{}, s)

	done := make(chan struct{})

	submit := func() {
		defer close(done)
		f(tagged)
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	switch {
	case s.hasRunner():
		s.runnerFn(submit)
	case s.queue != nil:
		s.queue <- submit
	default:
		go submit()
	}

	<-done
}

// AsyncAfter schedules f on this scheduler after delay elapses, using a
// concurrent background timer source regardless of which scheduler s is
// (the timer itself always fires off-schedule; only the eventual callback
// is dispatched through s).
func (s *Scheduler) AsyncAfter(ctx context.Context, delay time.Duration, f func(ctx context.Context)) {
	timer := time.AfterFunc(delay, func() {
		s.Async(ctx, f)
	})

	_ = timer
}

// DisposableAsyncAfter is like AsyncAfter but returns a handle that,
// disposed before the timer fires, best-effort prevents f from running. Per
// spec.md §4.3 / §9, this is an explicitly racy contract: f may still run
// after Dispose() returns if the timer had already fired before the race
// was won. Callers needing a hard guarantee must check an additional flag
// from inside f.
func (s *Scheduler) DisposableAsyncAfter(ctx context.Context, delay time.Duration, f func(ctx context.Context)) Disposable {
	var cancelled int32

	timer := time.AfterFunc(delay, func() {
		s.Async(ctx, func(ctx context.Context) {
			if loadCancelled(&cancelled) {
				return
			}

			f(ctx)
		})
	})

	return Disposer(func() {
		storeCancelled(&cancelled)
		timer.Stop()
	})
}

// IsCurrent reports whether this scheduler is the Immediate sentinel, or
// whether ctx was tagged as currently executing inside this scheduler (by a
// prior Async/Sync/Perform call on it).
func (s *Scheduler) IsCurrent(ctx context.Context) bool {
	if s.immediate {
		return true
	}

	if ctx == nil {
		return false
	}

	if cur, ok := ctx.Value(schedulerCtxKey{}).(*Scheduler); ok && cur == s {
		return true
	}

	if cur, ok := ctx.Value(syncSchedulerCtxKey{}).(*Scheduler); ok && cur == s {
		return true
	}

	return false
}

// Perform marks ctx as executing inside this scheduler's synchronous
// section for the duration of f, then calls f with the tagged context. It
// is used to bridge external callbacks that are already known to be
// arriving on a particular queue/thread (e.g. a UI toolkit's main-queue
// callback) without actually going through Async/Sync dispatch.
func (s *Scheduler) Perform(ctx context.Context, f func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}

	tagged := context.WithValue(ctx, syncSchedulerCtxKey{}, s)
	f(tagged)
}

// CurrentScheduler resolves the "current scheduler" for ctx: the scheduler
// inside whose async dispatch the executing code is running, falling back
// to whichever scheduler holds the current synchronous section, falling
// back to Background if none is set (or ctx is nil). There is deliberately no "is this the OS
// main thread" check (unlike the corpus this module descends from): Go
// programs do not have a fixed main thread for goroutines to compare
// against, so callers that need Main-thread affinity must route through an
// application-supplied Scheduler built with NewScheduler.
func CurrentScheduler(ctx context.Context) *Scheduler {
	if ctx == nil {
		return Background
	}

	if cur, ok := ctx.Value(schedulerCtxKey{}).(*Scheduler); ok {
		return cur
	}

	if cur, ok := ctx.Value(syncSchedulerCtxKey{}).(*Scheduler); ok {
		return cur
	}

	return Background
}

// Close stops the worker goroutine of a scheduler created with
// newSerialScheduler; on a scheduler from NewScheduler it only closes the
// scheduler's done channel and leaves dispatch to the runner. Sentinel schedulers
// (Immediate, Main, Background, ConcurrentBackground) are process-lifetime
// and are not meant to be closed.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		if s.queue != nil {
			close(s.queue)
		}
	})
}
