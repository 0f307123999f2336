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

// Package ratelimit gates flow.Enqueue submissions with ulule/limiter, as
// an admission control layered on top of (not instead of) a WorkQueue's own
// max-concurrency bound.
package ratelimit

import (
	"context"
	"errors"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	flow "github.com/iZettle/flow-go"
)

// ErrRateLimited is the error Allow's future fails with when an operation
// is rejected for exceeding the configured rate.
var ErrRateLimited = errors.New("flow: rate limited")

// Gate holds the rate budget that Allow checks, so that calls exceeding rate
// fail immediately with ErrRateLimited instead of being enqueued at all.
type Gate struct {
	limiter *limiter.Limiter
	key     string
}

// NewGate builds a Gate enforcing rate (e.g. "10-S" for 10 per second, per
// ulule/limiter's formatting rules) against an in-memory store, keyed by
// key (callers sharing a key share a budget).
func NewGate(rate, key string) (*Gate, error) {
	formatted, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()

	return &Gate{
		limiter: limiter.New(store, formatted),
		key:     key,
	}, nil
}

// Allow enqueues op against q only if the rate budget has room, otherwise
// returning an already-failed future carrying ErrRateLimited.
func Allow[R, U any](ctx context.Context, g *Gate, q *flow.WorkQueue[R], op func(resource R) *flow.Future[U]) *flow.Future[U] {
	ctxVal, err := g.limiter.Get(ctx, g.key)
	if err != nil {
		return flow.FutureError[U](err)
	}

	if ctxVal.Reached {
		return flow.FutureError[U](ErrRateLimited)
	}

	return flow.Enqueue(q, op)
}
