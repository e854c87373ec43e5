// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection is one subscriber socket with a bounded outbound queue.
type Connection struct {
	s    *Server
	conn *websocket.Conn

	// l guards send against being closed mid-send. active flips to false
	// exactly once, when send is closed.
	l      sync.RWMutex
	send   chan []byte
	active atomic.Bool
}

// deactivate stops new messages from being queued and lets the write pump
// drain.
func (c *Connection) deactivate() {
	c.l.Lock()
	defer c.l.Unlock()

	if c.active.Swap(false) {
		close(c.send)
	}
}

// Send queues [msg] and returns whether it was accepted. A full queue drops
// the message instead of blocking the publisher.
func (c *Connection) Send(msg []byte) bool {
	c.l.RLock()
	defer c.l.RUnlock()

	if !c.active.Load() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// readPump hands every inbound message to the server callback. It is the only
// reader of the connection and keeps the read deadline alive on pongs.
func (c *Connection) readPump() {
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()
	}()

	c.conn.SetReadLimit(c.s.config.MaxReadMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.s.log.Debug("unexpected close in websockets",
					zap.Stringer("remote", c.conn.RemoteAddr()),
					zap.Error(err),
				)
			}
			return
		}
		if c.s.callback != nil {
			c.s.callback(msg, c)
		}
	}
}

// writePump drains the send queue into the socket and pings the peer every
// PingPeriod. It is the only writer of the connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.s.config.PingPeriod)
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()
		ticker.Stop()

		// close unblocks the read pump
		_ = c.conn.Close()
	}()
	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Deactivated: say goodbye and hang up.
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ticker.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.s.log.Debug("closing the connection",
				zap.Stringer("remote", c.conn.RemoteAddr()),
				zap.Error(err),
			)
			return
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
