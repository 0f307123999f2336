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

// queueItem is the type-erased shape every Enqueue call stores in a
// WorkQueue: start begins the operation's own future, abort fails it
// without ever starting it.
type queueItem struct {
	start func()
	abort func(error)
}

// WorkQueue is a FIFO of pending operations sharing a resource, bounded to
// at most maxConcurrent running at once. Items are pulled strictly in
// insertion order as concurrency allows.
type WorkQueue[R any] struct {
	resource      R
	maxConcurrent int

	mu      sync.Mutex
	running int
	items   []queueItem
	closed  bool
	closeErr error

	emptyCB *Callbacker[bool]
}

// NewWorkQueue creates a queue bound to resource (shared read-only context
// for every enqueued operation, e.g. a connection or a client handle), with
// at most maxConcurrent operations running at once (maxConcurrent <= 0 is
// treated as 1).
func NewWorkQueue[R any](resource R, maxConcurrent int) *WorkQueue[R] {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &WorkQueue[R]{
		resource:      resource,
		maxConcurrent: maxConcurrent,
		emptyCB:       NewCallbacker[bool](),
	}
}

// Resource returns the resource the queue was constructed with.
func (q *WorkQueue[R]) Resource() R { return q.resource }

func (q *WorkQueue[R]) isEmptyLocked() bool {
	return q.running == 0 && len(q.items) == 0
}

func (q *WorkQueue[R]) notifyEmpty() {
	q.mu.Lock()
	empty := q.isEmptyLocked()
	q.mu.Unlock()

	q.emptyCB.CallAll(empty)
}

// IsEmptySignal is a Read signal of whether the queue currently has no
// running and no pending operations.
func (q *WorkQueue[R]) IsEmptySignal() ReadSignal[bool] {
	getter := func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()

		return q.isEmptyLocked()
	}

	return FromGetterCallbacker(getter, q.emptyCB)
}

func (q *WorkQueue[R]) pump() {
	for {
		q.mu.Lock()

		if q.running >= q.maxConcurrent || len(q.items) == 0 {
			q.mu.Unlock()

			return
		}

		item := q.items[0]
		q.items = q.items[1:]
		q.running++
		q.mu.Unlock()

		item.start()
	}
}

func (q *WorkQueue[R]) itemDone() {
	q.mu.Lock()
	q.running--
	q.mu.Unlock()

	q.notifyEmpty()
	q.pump()
}

// Enqueue appends op to q, to be run with q's resource once concurrency
// allows. The returned future completes with op's result, or immediately
// fails with the close error if q has already been closed.
func Enqueue[R, U any](q *WorkQueue[R], op func(resource R) *Future[U]) *Future[U] {
	out := &Future[U]{}

	item := queueItem{
		abort: func(err error) { out.complete(Failure[U](err)) },
	}
	item.start = func() {
		fut := op(q.resource)
		out.upstream = Disposer(func() { fut.cancelInternal(true) })

		fut.addListener(func(r Result[U]) {
			out.complete(r)
			q.itemDone()
		})
	}

	q.mu.Lock()
	if q.closed {
		err := q.closeErr
		q.mu.Unlock()
		out.complete(Failure[U](err))

		return out
	}

	q.items = append(q.items, item)
	q.mu.Unlock()

	q.notifyEmpty()
	q.pump()

	return out
}

// EnqueueBatch enqueues a single outer operation that itself owns a fresh
// child WorkQueue sharing q's resource and concurrency bound. The returned
// future does not complete until both op's own future completes and the
// child queue has fully drained; cancelling it aborts the child queue.
func EnqueueBatch[R, U any](q *WorkQueue[R], op func(child *WorkQueue[R]) *Future[U]) *Future[U] {
	return Enqueue(q, func(resource R) *Future[U] {
		child := NewWorkQueue(resource, q.maxConcurrent)
		out := &Future[U]{}

		var (
			mu         sync.Mutex
			innerDone  bool
			drained    bool
			innerValue Result[U]
		)

		finish := func() {
			mu.Lock()
			if !innerDone || !drained {
				mu.Unlock()
				return
			}
			mu.Unlock()

			out.complete(innerValue)
		}

		inner := op(child)

		sub := child.IsEmptySignal().core.subscribe(func(e event[bool]) {
			if e.kind == eventEnd {
				return
			}

			mu.Lock()
			drained = e.value
			mu.Unlock()

			finish()
		})

		inner.addListener(func(r Result[U]) {
			mu.Lock()
			innerDone = true
			innerValue = r
			mu.Unlock()

			finish()
		})

		out.upstream = Disposer(func() {
			inner.cancelInternal(true)
			AbortQueuedOperations(child, ErrAborted, true)
			sub.Dispose()
		})

		return out
	})
}

// AbortQueuedOperations fails every not-yet-started item in q with err
// without running it, leaving currently-running items untouched. If close
// is true, q is also closed: every future Enqueue call fails immediately
// with err instead of being queued.
func AbortQueuedOperations[R any](q *WorkQueue[R], err error, close bool) {
	q.mu.Lock()
	pending := q.items
	q.items = nil

	if close {
		q.closed = true
		q.closeErr = err
	}
	q.mu.Unlock()

	for _, item := range pending {
		item.abort(err)
	}

	q.notifyEmpty()
}
