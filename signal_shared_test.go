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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShared_installsExactlyOneUpstreamSubscriptionPerActiveListenerSet(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	subscribeCount := 0
	cb := NewCallbacker[int]()

	source := Signal[int]{core: newPlainCore[int](func(onEvent func(event[int])) Disposable {
		subscribeCount++

		return cb.AddCallback(func(v int) { onEvent(valueEvent(v)) })
	})}

	shared := Shared(source)

	var got1, got2, got3 []int
	sub1 := shared.Subscribe(func(v int) { got1 = append(got1, v) })
	sub2 := shared.Subscribe(func(v int) { got2 = append(got2, v) })
	sub3 := shared.Subscribe(func(v int) { got3 = append(got3, v) })

	cb.CallAll(1)
	cb.CallAll(2)
	cb.CallAll(3)

	is.Equal(1, subscribeCount)
	is.Equal([]int{1, 2, 3}, got1)
	is.Equal([]int{1, 2, 3}, got2)
	is.Equal([]int{1, 2, 3}, got3)

	sub1.Dispose()
	sub2.Dispose()
	sub3.Dispose()

	var got4 []int
	sub4 := shared.Subscribe(func(v int) { got4 = append(got4, v) })
	defer sub4.Dispose()

	cb.CallAll(4)

	is.Equal(2, subscribeCount)
	is.Equal([]int{4}, got4)
}

func TestSharedFinite_lateListenerReceivesEndWithoutPastValues(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cb := NewCallbacker[Event[int]]()
	source := FromEventCallbacker(cb)
	shared := SharedFinite(source)

	var got []int
	sub := shared.Subscribe(func(v int) { got = append(got, v) }, func(error) {})
	defer sub.Dispose()

	cb.CallAll(NewValueEvent(1))
	cb.CallAll(NewEndEvent[int](nil))

	var (
		lateGot   []int
		lateEnded bool
	)
	shared.Subscribe(func(v int) { lateGot = append(lateGot, v) }, func(error) { lateEnded = true })

	is.Equal([]int{1}, got)
	is.Empty(lateGot)
	is.True(lateEnded)
}
