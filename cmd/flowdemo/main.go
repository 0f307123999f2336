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

// Command flowdemo wires a handful of the domain-stack plugins together:
// it watches a directory for changes and runs each change through a
// bounded WorkQueue that logs it, and logs a cron-style heartbeat tick.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	flow "github.com/iZettle/flow-go"
	"github.com/iZettle/flow-go/plugins/cronsignal"
	"github.com/iZettle/flow-go/plugins/fswatch"
)

func main() {
	watchDir := flag.String("watch", ".", "directory to watch for changes")
	heartbeat := flag.String("heartbeat", "*/1 * * * *", "cron expression for the heartbeat tick")
	concurrency := flag.Int("concurrency", 2, "max concurrent work items")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	flow.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bag := flow.NewDisposeBag()
	defer bag.Dispose()

	queue := flow.NewWorkQueue(struct{}{}, *concurrency)

	changes := fswatch.Watch(*watchDir)
	bag.Add(changes.Subscribe(func(ev fsnotify.Event) {
		flow.Enqueue(queue, func(struct{}) *flow.Future[struct{}] {
			return flow.NewFuture(ctx, flow.Background, func(ctx context.Context, complete func(flow.Result[struct{}]), _ *flow.Mover[struct{}]) flow.Disposable {
				logger.Info("file change observed", zap.String("event", ev.String()))
				complete(flow.Success(struct{}{}))

				return flow.NilDisposer
			})
		})
	}, func(err error) {
		if err != nil {
			logger.Warn("watch ended", zap.Error(err))
		}
	}))

	heartbeatSignal, err := cronsignal.Every(*heartbeat)
	if err != nil {
		logger.Fatal("invalid heartbeat expression", zap.Error(err))
	}

	bag.Add(heartbeatSignal.Subscribe(func(t time.Time) {
		logger.Info("heartbeat", zap.Time("at", t))
	}))

	<-ctx.Done()
}
