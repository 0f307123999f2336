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

// Package distinctapprox provides a probabilistic DistinctApprox operator
// built on axiomhq/hyperloglog, for streams too high-volume to deduplicate
// exactly with flow.Distinct's equality comparison.
package distinctapprox

import (
	"github.com/axiomhq/hyperloglog"

	flow "github.com/iZettle/flow-go"
)

// DistinctApprox forwards every value of s through toBytes into an internal
// HyperLogLog sketch, emitting only values whose byte encoding has not
// (with high probability) been seen before. Each subscription owns its own
// sketch, so two subscribers to the same signal filter independently -
// matching flow.Distinct's per-subscription state.
func DistinctApprox[T any](s flow.Signal[T], toBytes func(T) []byte) flow.Signal[T] {
	return flow.NewSignal(func(onValue func(T)) flow.Disposable {
		sketch := hyperloglog.New16()

		return s.Subscribe(func(v T) {
			b := toBytes(v)

			if sketch.Insert(b) {
				onValue(v)
			}
		})
	})
}

// Sketch is a standalone cardinality sketch: Observe feeds a signal's values
// into it and reports the running distinct-count estimate. It is separate
// from the per-subscription sketch that DistinctApprox keeps internally.
type Sketch struct {
	hll *hyperloglog.Sketch
}

// NewSketch creates an empty cardinality sketch.
func NewSketch() *Sketch {
	return &Sketch{hll: hyperloglog.New16()}
}

// Observe feeds s's byte-encoded values into the sketch, returning a Read
// signal of the running estimated distinct count.
func Observe[T any](sk *Sketch, s flow.Signal[T], toBytes func(T) []byte) flow.ReadSignal[uint64] {
	cb := flow.NewCallbacker[uint64]()

	s.Subscribe(func(v T) {
		sk.hll.Insert(toBytes(v))
		cb.CallAll(sk.hll.Estimate())
	})

	return flow.FromGetterCallbacker(func() uint64 { return sk.hll.Estimate() }, cb)
}
