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

// Package wsconn adapts gorilla/websocket into the Future/CoreSignal
// vocabulary: dialing is a Future[*Conn], and a connection's inbound
// messages are a FiniteSignal.
package wsconn

import (
	"context"

	"github.com/gorilla/websocket"

	flow "github.com/iZettle/flow-go"
)

// Message is one inbound websocket frame.
type Message struct {
	Type int
	Data []byte
}

// Conn wraps an established websocket connection.
type Conn struct {
	ws *websocket.Conn
}

// Send writes a text or binary frame (messageType is one of the
// websocket.*Message constants).
func (c *Conn) Send(messageType int, data []byte) error {
	return c.ws.WriteMessage(messageType, data)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Messages returns a Finite signal of every inbound message, ending when
// the connection is closed or a read fails.
func (c *Conn) Messages() flow.FiniteSignal[Message] {
	return flow.NewFiniteSignal(func(onEvent func(flow.Event[Message])) flow.Disposable {
		done := make(chan struct{})

		go func() {
			for {
				mt, data, err := c.ws.ReadMessage()
				if err != nil {
					onEvent(flow.NewEndEvent[Message](err))

					return
				}

				select {
				case <-done:
					return
				default:
				}

				onEvent(flow.NewValueEvent(Message{Type: mt, Data: data}))
			}
		}()

		return flow.Disposer(func() {
			close(done)
			c.ws.Close()
		})
	})
}

// Connect dials url asynchronously on scheduler, completing with the
// established *Conn or a dial error.
func Connect(ctx context.Context, scheduler *flow.Scheduler, url string) *flow.Future[*Conn] {
	return flow.NewFuture(ctx, scheduler, func(ctx context.Context, complete func(flow.Result[*Conn]), mover *flow.Mover[*Conn]) flow.Disposable {
		dialer := websocket.DefaultDialer

		ws, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			complete(flow.Failure[*Conn](err))

			return flow.NilDisposer
		}

		complete(flow.Success(&Conn{ws: ws}))

		return flow.NilDisposer
	})
}
