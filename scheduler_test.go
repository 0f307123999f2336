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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_IsCurrent_immediateIsAlwaysCurrent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.True(Immediate.IsCurrent(context.Background()))
	is.True(Immediate.IsCurrent(nil))
}

func TestScheduler_Async_tagsContextWithSelf(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	s := newSerialScheduler("test-async", 8)
	defer s.Close()

	var wg sync.WaitGroup
	wg.Add(1)

	var isCurrentInside bool

	s.Async(context.Background(), func(ctx context.Context) {
		isCurrentInside = s.IsCurrent(ctx)
		wg.Done()
	})

	wg.Wait()

	is.True(isCurrentInside)
}

func TestScheduler_Async_reentrantCallRunsInline(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	s := newSerialScheduler("test-reentrant", 8)
	defer s.Close()

	var wg sync.WaitGroup
	wg.Add(1)

	s.Async(context.Background(), func(ctx context.Context) {
		ranInline := false
		s.Async(ctx, func(context.Context) { ranInline = true })
		is.True(ranInline)
		wg.Done()
	})

	wg.Wait()
}

func TestScheduler_Sync_blocksUntilDone(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	s := newSerialScheduler("test-sync", 8)
	defer s.Close()

	ran := false
	s.Sync(context.Background(), func(context.Context) { ran = true })

	is.True(ran)
}

func TestScheduler_DisposableAsyncAfter_disposeCancelsPendingTimer(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	ran := false
	d := Background.DisposableAsyncAfter(context.Background(), 50*time.Millisecond, func(context.Context) {
		ran = true
	})

	d.Dispose()

	time.Sleep(100 * time.Millisecond)

	is.False(ran)
}

func TestCurrentScheduler_fallsBackToBackground(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.Equal(Background, CurrentScheduler(context.Background()))
	is.Equal(Background, CurrentScheduler(nil))
}

func TestNewScheduler_usesSuppliedRunner(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var ran []func()

	s := NewScheduler("custom", func(f func()) {
		ran = append(ran, f)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	s.Async(context.Background(), func(context.Context) { wg.Done() })

	is.Len(ran, 1)
	ran[0]()
	wg.Wait()
}
