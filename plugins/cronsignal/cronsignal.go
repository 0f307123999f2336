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

// Package cronsignal adapts robfig/cron into a flow.Signal, ticking with
// the firing time on every match of a cron expression instead of running a
// callback directly.
package cronsignal

import (
	"time"

	"github.com/robfig/cron/v3"

	flow "github.com/iZettle/flow-go"
)

// Every returns a Plain signal that fires with the current time whenever
// expr (a standard five-field cron expression) matches. Each subscription
// owns an independent cron.Cron instance, stopped on Dispose.
func Every(expr string) (flow.Signal[time.Time], error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	if _, err := parser.Parse(expr); err != nil {
		return flow.Signal[time.Time]{}, err
	}

	sig := flow.NewSignal(func(onValue func(time.Time)) flow.Disposable {
		c := cron.New()

		id, addErr := c.AddFunc(expr, func() { onValue(time.Now()) })
		if addErr != nil {
			return flow.NilDisposer
		}

		c.Start()

		return flow.Disposer(func() {
			c.Remove(id)
			<-c.Stop().Done()
		})
	})

	return sig, nil
}
