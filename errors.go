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
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrAborted is the single well-known error used whenever a Future is
// cancelled, a select/join loser is dropped, or a closed WorkQueue is
// enqueued on.
var ErrAborted = errors.New("flow: aborted")

// disposeError wraps a panic recovered from a Teardown/Disposer closure.
type disposeError struct {
	cause error
}

func (e *disposeError) Error() string { return fmt.Sprintf("flow: disposer panicked: %s", e.cause) }
func (e *disposeError) Unwrap() error { return e.cause }

func newDisposeError(cause error) error { return &disposeError{cause: cause} }

// callbackError wraps a panic recovered from a user-supplied signal or
// future callback (map, filter, onValue, ...).
type callbackError struct {
	cause error
}

func (e *callbackError) Error() string { return fmt.Sprintf("flow: callback panicked: %s", e.cause) }
func (e *callbackError) Unwrap() error { return e.cause }

func newCallbackError(cause error) error { return &callbackError{cause: cause} }

// recoverValueToError normalizes a recover() value (error, string, or
// anything else Stringer-ish) into an error.
func recoverValueToError(v any) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	default:
		return fmt.Errorf("%v", e)
	}
}

// tryCatch runs fn and converts any panic into an error via onPanic. It
// mirrors the capture-by-default posture used throughout this module: user
// closures should not be able to take down a scheduler worker or a signal's
// dispatch loop. Panic recovery itself is delegated to samber/lo, the same
// helper the wider corpus uses for its own observer/subscription recovery.
func tryCatch(fn func(), onPanic func(err error)) {
	lo.TryCatchWithErrorValue(
		func() error {
			fn()
			return nil
		},
		func(e any) {
			onPanic(newCallbackError(recoverValueToError(e)))
		},
	)
}

// tryCatchError is like tryCatch but fn itself may return an error, which is
// reported the same way a panic would be.
func tryCatchError(fn func() error, onErr func(err error)) {
	var caught error

	lo.TryCatchWithErrorValue(
		func() error {
			caught = fn()
			return nil
		},
		func(e any) {
			onErr(newCallbackError(recoverValueToError(e)))
		},
	)

	if caught != nil {
		onErr(caught)
	}
}
