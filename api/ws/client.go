// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/runtime"
)

type WebSocketClient struct {
	conn *websocket.Conn
	wl   sync.Mutex
	rl   sync.Mutex
	cl   sync.Once
}

// NewWebSocketClient dials the result stream under [uri], the API base URL
// ("http://" or "ws://").
func NewWebSocketClient(uri string) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http", "ws", 1)
	uri += Endpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	// not using resp for now
	resp.Body.Close()
	return &WebSocketClient{conn: conn}, nil
}

func (c *WebSocketClient) write(msg []byte) error {
	c.wl.Lock()
	defer c.wl.Unlock()

	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}

// RegisterResults subscribes to every processed transaction.
func (c *WebSocketClient) RegisterResults() error {
	return c.write([]byte{ResultsMode})
}

// RegisterAccount subscribes to transactions that reference [addr].
func (c *WebSocketClient) RegisterAccount(addr codec.Address) error {
	return c.write(append([]byte{AccountMode}, addr[:]...))
}

// SubmitTx sends [tx] to be processed. Its result arrives through Listen.
func (c *WebSocketClient) SubmitTx(tx *runtime.Transaction) error {
	return c.write(append([]byte{TxMode}, tx.Bytes()...))
}

// Listen blocks until the next message arrives.
func (c *WebSocketClient) Listen() (*Message, error) {
	c.rl.Lock()
	defer c.rl.Unlock()

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var m Message
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}
