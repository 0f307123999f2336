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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkQueue_Enqueue_respectsMaxConcurrency(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	q := NewWorkQueue(struct{}{}, 2)

	var (
		mu      sync.Mutex
		current int
		peak    int
	)

	op := func(struct{}) *Future[struct{}] {
		return NewFuture(context.Background(), ConcurrentBackground, func(ctx context.Context, complete func(Result[struct{}]), _ *Mover[struct{}]) Disposable {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.AfterFunc(30*time.Millisecond, func() {
				mu.Lock()
				current--
				mu.Unlock()

				complete(Success(struct{}{}))
			})

			return NilDisposer
		})
	}

	var futures []*Future[struct{}]
	for i := 0; i < 5; i++ {
		futures = append(futures, Enqueue(q, op))
	}

	for _, f := range futures {
		done := make(chan struct{})
		f.addListener(func(Result[struct{}]) { close(done) })
		<-done
	}

	is.LessOrEqual(peak, 2)
}

func TestWorkQueue_AbortQueuedOperations_failsUnstartedItems(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	q := NewWorkQueue(struct{}{}, 1)

	blocker := make(chan struct{})

	firstDone := make(chan struct{})
	Enqueue(q, func(struct{}) *Future[int] {
		return NewFuture(context.Background(), ConcurrentBackground, func(ctx context.Context, complete func(Result[int]), _ *Mover[int]) Disposable {
			go func() {
				<-blocker
				complete(Success(1))
				close(firstDone)
			}()

			return NilDisposer
		})
	})

	second := Enqueue(q, func(struct{}) *Future[int] { return FutureValue(2) })

	sentinel := ErrAborted
	AbortQueuedOperations(q, sentinel, true)

	done := make(chan Result[int], 1)
	second.addListener(func(r Result[int]) { done <- r })

	r := <-done
	is.False(r.IsSuccess())
	is.Equal(sentinel, r.Err)

	close(blocker)
	<-firstDone

	third := Enqueue(q, func(struct{}) *Future[int] { return FutureValue(3) })
	doneThird := make(chan Result[int], 1)
	third.addListener(func(r Result[int]) { doneThird <- r })

	r3 := <-doneThird
	is.False(r3.IsSuccess())
	is.Equal(sentinel, r3.Err)
}

func TestWorkQueue_IsEmptySignal_reflectsQueueState(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	q := NewWorkQueue(struct{}{}, 1)
	is.True(q.IsEmptySignal().Value())

	var seenNonEmpty int32

	sub := q.IsEmptySignal().Subscribe(func(empty bool) {
		if !empty {
			atomic.StoreInt32(&seenNonEmpty, 1)
		}
	})
	defer sub.Dispose()

	done := make(chan struct{})
	Enqueue(q, func(struct{}) *Future[struct{}] {
		return NewFuture(context.Background(), ConcurrentBackground, func(ctx context.Context, complete func(Result[struct{}]), _ *Mover[struct{}]) Disposable {
			time.AfterFunc(20*time.Millisecond, func() {
				complete(Success(struct{}{}))
				close(done)
			})

			return NilDisposer
		})
	})

	<-done
	time.Sleep(10 * time.Millisecond)

	is.Equal(int32(1), atomic.LoadInt32(&seenNonEmpty))
	is.True(q.IsEmptySignal().Value())
}
