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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func delayedValue[V any](ctx context.Context, v V, after time.Duration) *Future[V] {
	return NewFuture(ctx, ConcurrentBackground, func(ctx context.Context, complete func(Result[V]), _ *Mover[V]) Disposable {
		timer := time.AfterFunc(after, func() { complete(Success(v)) })

		return Disposer(func() { timer.Stop() })
	})
}

func TestFuture_Cancel_succeedsWithNoListeners(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := delayedValue(context.Background(), 42, time.Second)

	is.True(f.Cancel())

	var got Result[int]
	f.addListener(func(r Result[int]) { got = r })

	is.False(got.IsSuccess())
	is.ErrorIs(got.Err, ErrAborted)
}

func TestFuture_Cancel_noopOnceListenerAttached(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := delayedValue(context.Background(), 42, 30*time.Millisecond)

	done := make(chan Result[int], 1)
	f.addListener(func(r Result[int]) { done <- r })

	is.False(f.Cancel())

	r := <-done
	is.True(r.IsSuccess())
	is.Equal(42, r.Value)
}

func TestFuture_Cancel_noopOnceCompleted(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := FutureValue(1)
	is.False(f.Cancel())
}

func TestMapFuture_transformsSuccessValue(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := FutureValue(2)
	mapped := MapFuture(f, func(v int) int { return v * 10 })

	done := make(chan Result[int], 1)
	mapped.addListener(func(r Result[int]) { done <- r })

	r := <-done
	is.True(r.IsSuccess())
	is.Equal(20, r.Value)
}

func TestMapFuture_propagatesFailureWithoutCallingF(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sentinel := errors.New("boom")
	f := FutureError[int](sentinel)

	called := false
	mapped := MapFuture(f, func(v int) int { called = true; return v })

	done := make(chan Result[int], 1)
	mapped.addListener(func(r Result[int]) { done <- r })

	r := <-done
	is.False(called)
	is.Equal(sentinel, r.Err)
}

func TestFlatMap_chainsToInnerFuture(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	f := FutureValue(2)
	chained := FlatMap(f, func(v int) *Future[string] {
		return FutureValue("got-2")
	})

	done := make(chan Result[string], 1)
	chained.addListener(func(r Result[string]) { done <- r })

	r := <-done
	is.True(r.IsSuccess())
	is.Equal("got-2", r.Value)
}

func TestJoin_succeedsWhenBothSucceed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := FutureValue(1)
	b := FutureValue("x")

	joined := Join(a, b, true)

	done := make(chan Result[Joined[int, string]], 1)
	joined.addListener(func(r Result[Joined[int, string]]) { done <- r })

	r := <-done
	is.True(r.IsSuccess())
	is.Equal(1, r.Value.First)
	is.Equal("x", r.Value.Second)
}

func TestJoin_failsWhenEitherFails(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sentinel := errors.New("nope")
	a := FutureValue(1)
	b := FutureError[string](sentinel)

	joined := Join(a, b, true)

	done := make(chan Result[Joined[int, string]], 1)
	joined.addListener(func(r Result[Joined[int, string]]) { done <- r })

	r := <-done
	is.False(r.IsSuccess())
	is.Equal(sentinel, r.Err)
}

func TestSelect_completesWithFirstFinisher(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	fast := FutureValue("fast")
	slow := delayedValue(context.Background(), "slow", time.Second)

	selected := Select(fast, slow)

	done := make(chan Result[Selected[string, string]], 1)
	selected.addListener(func(r Result[Selected[string, string]]) { done <- r })

	r := <-done
	is.True(r.IsSuccess())
	is.True(r.Value.IsFirst)
	is.Equal("fast", r.Value.First)
}

func TestSingleTaskPerformer_coalescesConcurrentCallers(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	starts := 0

	perf := NewSingleTaskPerformer[int]()

	newTask := func() *Future[int] {
		starts++

		return delayedValue(context.Background(), 1, 30*time.Millisecond)
	}

	f1 := perf.PerformSingleTask(newTask)
	f2 := perf.PerformSingleTask(newTask)

	done1 := make(chan Result[int], 1)
	done2 := make(chan Result[int], 1)

	f1.addListener(func(r Result[int]) { done1 <- r })
	f2.addListener(func(r Result[int]) { done2 <- r })

	<-done1
	<-done2

	is.Equal(1, starts)
}

func TestSingleTaskPerformer_cancellingOneCallerDoesNotAffectAnother(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	perf := NewSingleTaskPerformer[int]()

	newTask := func() *Future[int] {
		return delayedValue(context.Background(), 7, 30*time.Millisecond)
	}

	f1 := perf.PerformSingleTask(newTask)
	f2 := perf.PerformSingleTask(newTask)

	is.True(f1.Cancel())

	done2 := make(chan Result[int], 1)
	f2.addListener(func(r Result[int]) { done2 <- r })

	r2 := <-done2
	is.True(r2.IsSuccess())
	is.Equal(7, r2.Value)
}
