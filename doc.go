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

// Package flow is a small reactive core: deterministic lifetime management
// (Disposable, DisposeBag), composable event streams over time (CoreSignal
// and its transform algebra), and single-completion asynchronous results
// with cancellation (Future, WorkQueue). A Scheduler abstraction threads
// through all three to control re-entrancy and callback dispatch.
//
// The three abstractions are meant to compose: a signal operator may spawn
// asynchronous work whose cancellation is driven by the subscription's
// Disposable; a Future may expose itself as a signal; a Disposable may hold
// a bag of nested Disposables whose lifetimes are tied together.
package flow
