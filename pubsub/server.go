// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Callback handles one message read from [*Connection].
type Callback func([]byte, *Connection)

type ServerConfig struct {
	ReadBufferSize     int           `yaml:"readBufferSize"`
	WriteBufferSize    int           `yaml:"writeBufferSize"`
	WriteWait          time.Duration `yaml:"writeWait"`
	PongWait           time.Duration `yaml:"pongWait"`
	PingPeriod         time.Duration `yaml:"pingPeriod"`
	MaxReadMessageSize int64         `yaml:"maxReadMessageSize"`
	MaxPendingMessages int           `yaml:"maxPendingMessages"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     readBufferSize,
		WriteBufferSize:    writeBufferSize,
		WriteWait:          writeWait,
		PongWait:           pongWait,
		PingPeriod:         (pongWait * 9) / 10,
		MaxReadMessageSize: maxReadMessageSize,
		MaxPendingMessages: maxPendingMessages,
	}
}

// Server upgrades HTTP requests to websocket connections and fans published
// messages out to them.
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader
	callback Callback

	conns *Connections
}

// New returns a new Server instance. [callback] is called for every message
// a client sends and may be nil.
func New(log logging.Logger, config ServerConfig, callback Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			// origins are filtered by the HTTP server's cors handler
			CheckOrigin: func(*http.Request) bool { return true },
		},
		callback: callback,
		conns:    NewConnections(),
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		send: make(chan []byte, s.config.MaxPendingMessages),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every active connection in [toConns] and returns
// the connections that are no longer active.
func (s *Server) Publish(msg []byte, toConns *Connections) []*Connection {
	inactiveConnections := make([]*Connection, 0)
	for _, conn := range toConns.Conns() {
		// check server has connection O(1)
		if !s.conns.Has(conn) {
			inactiveConnections = append(inactiveConnections, conn)
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
		}
	}
	return inactiveConnections
}

// Connections returns every live connection.
func (s *Server) Connections() *Connections {
	return s.conns
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}
