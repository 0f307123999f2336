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

func TestFlatMapLatest_cancelsSupersededInner(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	outerCB := NewCallbacker[int]()
	outer := FromPlainCallbacker(outerCB)

	var disposed []int

	mapped := FlatMapLatest(outer, func(v int) FiniteSignal[string] {
		return NewFiniteSignal(func(onEvent func(Event[string])) Disposable {
			timer := time.AfterFunc(30*time.Millisecond, func() {
				onEvent(NewValueEvent("slow-" + time.Duration(v).String()))
				onEvent(NewEndEvent[string](nil))
			})

			return Disposer(func() {
				timer.Stop()
				disposed = append(disposed, v)
			})
		})
	})

	var got []string
	sub := mapped.Subscribe(func(v string) { got = append(got, v) })
	defer sub.Dispose()

	outerCB.CallAll(1)
	outerCB.CallAll(2)

	time.Sleep(60 * time.Millisecond)

	is.Contains(disposed, 1)
	is.NotContains(got, "slow-1ns")
}

func TestReduce_accumulatesRunningTotal(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	total := Reduce(src, 0, func(acc, v int) int { return acc + v })

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)

	is.Equal(6, total.Value())
}

func TestBuffer_emitsFullChunks(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	buffered := Buffer(src, 2)

	var got [][]int
	sub := buffered.Subscribe(func(v []int) { got = append(got, v) })
	defer sub.Dispose()

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)

	is.Equal([][]int{{1, 2}}, got)
}

func TestDebounce_onlyForwardsAfterSilence(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	debounced := Debounce(context.Background(), ConcurrentBackground, src, 20*time.Millisecond)

	var got []int
	sub := debounced.Subscribe(func(v int) { got = append(got, v) })
	defer sub.Dispose()

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)

	time.Sleep(50 * time.Millisecond)

	is.Equal([]int{3}, got)
}

func TestThrottle_forwardsFirstOfEachWindow(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	throttled := Throttle(context.Background(), ConcurrentBackground, src, 50*time.Millisecond, false)

	var got []int
	sub := throttled.Subscribe(func(v int) { got = append(got, v) })
	defer sub.Dispose()

	cb.CallAll(1)
	cb.CallAll(2)

	is.Equal([]int{1}, got)
}

func TestEnumerate_pairsWithIndex(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[string]()
	src := FromPlainCallbacker(cb)

	enumerated := Enumerate(src)

	var got []Indexed[string]
	sub := enumerated.Subscribe(func(v Indexed[string]) { got = append(got, v) })
	defer sub.Dispose()

	cb.CallAll("a")
	cb.CallAll("b")

	is.Equal([]Indexed[string]{{Index: 0, Value: "a"}, {Index: 1, Value: "b"}}, got)
}

func TestLatestTwo_pairsPreviousAndCurrent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	pairs := LatestTwo(src)

	var got []Pair[int]
	sub := pairs.Subscribe(func(v Pair[int]) { got = append(got, v) })
	defer sub.Dispose()

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)

	is.Equal([]Pair[int]{{Previous: 1, Current: 2}, {Previous: 2, Current: 3}}, got)
}

func TestWaitUntil_buffersAtMostOneValueAndReleasesOnRisingEdge(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	srcCB := NewCallbacker[int]()
	src := FromPlainCallbacker(srcCB)

	gateCB := NewCallbacker[bool]()
	current := false
	gate := FromGetterCallbacker(func() bool { return current }, gateCB)

	setGate := func(v bool) {
		current = v
		gateCB.CallAll(v)
	}

	out := WaitUntil(src, gate)

	var got []int
	sub := out.Subscribe(func(v int) { got = append(got, v) })
	defer sub.Dispose()

	srcCB.CallAll(1)
	srcCB.CallAll(2)
	is.Empty(got)

	setGate(true)
	is.Equal([]int{2}, got)

	srcCB.CallAll(3)
	is.Equal([]int{2, 3}, got)

	setGate(false)
	setGate(true)
	is.Equal([]int{2, 3}, got)

	srcCB.CallAll(4)
	setGate(false)
	setGate(true)
	is.Equal([]int{2, 3, 4}, got)
}

func TestCollect_emitsAccumulatedSliceOnceThenEnd(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[Event[int]]()
	src := FromEventCallbacker(cb)

	collected := Collect(src)

	var (
		got  [][]int
		ends int
		last error
	)
	collected.Subscribe(func(v []int) { got = append(got, v) }, func(err error) {
		ends++
		last = err
	})

	cb.CallAll(NewValueEvent(1))
	cb.CallAll(NewValueEvent(2))
	is.Empty(got)
	is.Equal(0, ends)

	cb.CallAll(NewEndEvent[int](nil))

	is.Equal([][]int{{1, 2}}, got)
	is.Equal(1, ends)
	is.NoError(last)
}

func TestTryMap_endsOnFirstErrorFromF(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[int]()
	src := FromPlainCallbacker(cb)

	boom := errors.New("boom")

	mapped := TryMap(src, func(v int) (int, error) {
		if v == 3 {
			return 0, boom
		}

		return v * 2, nil
	})

	var (
		got  []int
		ends int
		last error
	)
	mapped.Subscribe(func(v int) { got = append(got, v) }, func(err error) {
		ends++
		last = err
	})

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)
	cb.CallAll(4)

	is.Equal([]int{2, 4}, got)
	is.Equal(1, ends)
	is.Equal(boom, last)
}
