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

func TestDisposer_Dispose_runsOnce(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	count := 0
	d := Disposer(func() { count++ })

	d.Dispose()
	d.Dispose()
	d.Dispose()

	is.Equal(1, count)
}

func TestDisposer_Dispose_nilFuncIsNoop(t *testing.T) {
	t.Parallel()

	d := Disposer(nil)
	d.Dispose()
}

func TestDisposer_Dispose_reentrantSelfDisposeDoesNotDeadlock(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var d Disposable

	ran := false
	d = Disposer(func() {
		ran = true
		d.Dispose()
	})

	d.Dispose()

	is.True(ran)
}

func TestNilDisposer_Dispose_isNoop(t *testing.T) {
	t.Parallel()

	NilDisposer.Dispose()
}

func TestDisposeBag_Dispose_disposesChildrenInOrder(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var order []int

	bag := NewDisposeBag()
	bag.Add(Disposer(func() { order = append(order, 1) }))
	bag.Add(Disposer(func() { order = append(order, 2) }))
	bag.Add(Disposer(func() { order = append(order, 3) }))

	bag.Dispose()

	is.Equal([]int{1, 2, 3}, order)
}

func TestDisposeBag_Dispose_isReusableAfterDispose(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	bag := NewDisposeBag()

	count := 0
	bag.Add(Disposer(func() { count++ }))
	bag.Dispose()
	is.Equal(1, count)
	is.True(bag.IsEmpty())

	bag.Add(Disposer(func() { count++ }))
	is.False(bag.IsEmpty())

	bag.Dispose()
	is.Equal(2, count)
}

func TestDisposeBag_InnerBag_parentDisposesChild(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	parent := NewDisposeBag()
	child := parent.InnerBag()

	disposed := false
	child.Add(Disposer(func() { disposed = true }))

	parent.Dispose()

	is.True(disposed)
}

func TestDisposeBag_Dispose_reentrantChildCallingParentDoesNotDeadlock(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	bag := NewDisposeBag()

	secondRan := false
	bag.Add(Disposer(func() { bag.Add(Disposer(func() { secondRan = true })) }))

	bag.Dispose()

	is.False(secondRan, "a disposable added during Dispose belongs to the next generation, not this one")
}

func TestDisposeBag_Hold_releasesReferenceOnDispose(t *testing.T) {
	t.Parallel()

	bag := NewDisposeBag()
	bag.Hold(&struct{}{})
	bag.Dispose()
}
