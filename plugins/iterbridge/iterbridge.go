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

// Package iterbridge connects flow's stream algebra to the standard
// library's range-over-func iterators (iter.Seq) and to golang.org/x/exp's
// numeric constraints, for call sites that want to consume a signal's
// collected history with a plain "for v := range seq" loop, or fold a
// numeric stream without writing a bespoke reducer each time.
package iterbridge

import (
	"iter"

	"github.com/samber/lo"
	"golang.org/x/exp/constraints"

	flow "github.com/iZettle/flow-go"
)

// Seq converts a slice-valued Read signal (e.g. the output of flow.Reduce
// accumulating into a slice) into an iter.Seq over its current contents at
// the moment of iteration.
func Seq[T any](s flow.ReadSignal[[]T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.Value() {
			if !yield(v) {
				return
			}
		}
	}
}

// Sum folds a numeric signal into a running total, exposed as a Read
// signal, via golang.org/x/exp/constraints so callers are not limited to a
// single hardcoded numeric type.
func Sum[T constraints.Integer | constraints.Float](s flow.Signal[T]) flow.ReadSignal[T] {
	return flow.Reduce(s, T(0), func(acc T, v T) T { return acc + v })
}

// FilterSeq snapshots a collected signal's current contents through
// samber/lo's slice helpers, returning only the elements satisfying pred as
// a fresh iter.Seq.
func FilterSeq[T any](s flow.ReadSignal[[]T], pred func(T) bool) iter.Seq[T] {
	kept := lo.Filter(s.Value(), func(v T, _ int) bool { return pred(v) })

	return func(yield func(T) bool) {
		for _, v := range kept {
			if !yield(v) {
				return
			}
		}
	}
}
