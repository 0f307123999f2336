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
	"sync/atomic"

	"go.uber.org/zap"
)

// logger holds the package-wide structured logger, accessed via atomic.Value
// so concurrent readers (every scheduler worker, every signal dispatch loop)
// and an occasional writer (SetLogger) never race.
var logger atomic.Value // *zap.Logger

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the structured logger used for unhandled errors and
// dropped notifications. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	logger.Store(l)
}

// Logger returns the currently installed structured logger.
func Logger() *zap.Logger {
	return logger.Load().(*zap.Logger)
}

// onUnhandledError is called when an error surfaces with nowhere left to go:
// a callback, disposer or scheduled function panicked with no onError to
// route the recovered error to, or a FlatMapLatest inner signal ended with
// an error.
func onUnhandledError(origin string, err error) {
	if err == nil {
		return
	}

	Logger().Warn("flow: unhandled error", zap.String("origin", origin), zap.Error(err))
}

// onDroppedNotification is called when a signal subscription's dispatcher
// receives an event after the subscription has already ended or been
// disposed.
func onDroppedNotification(origin string, reason string) {
	Logger().Debug("flow: dropped notification", zap.String("origin", origin), zap.String("reason", reason))
}
