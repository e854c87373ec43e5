// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	uri := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitForConns blocks until [s] has registered [n] connections.
func waitForConns(t *testing.T, s *Server, n int) {
	require.Eventually(t, func() bool {
		return s.Connections().Len() == n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServerPublish(t *testing.T) {
	require := require.New(t)
	server := New(logging.NoLog{}, NewDefaultServerConfig(), nil)
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	waitForConns(t, server, 1)

	inactive := server.Publish([]byte("dummy_msg"), server.Connections())
	require.Empty(inactive)

	_, msg, err := conn.ReadMessage()
	require.NoError(err)
	require.Equal("dummy_msg", string(msg))

	require.NoError(conn.Close())
	waitForConns(t, server, 0)
}

func TestServerCallback(t *testing.T) {
	require := require.New(t)
	server := New(logging.NoLog{}, NewDefaultServerConfig(), func(msg []byte, c *Connection) {
		_ = c.Send(append([]byte("echo:"), msg...))
	})
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	_, msg, err := conn.ReadMessage()
	require.NoError(err)
	require.Equal("echo:hello", string(msg))
}

func TestServerPublishSkipsRemoved(t *testing.T) {
	require := require.New(t)
	server := New(logging.NoLog{}, NewDefaultServerConfig(), nil)
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	waitForConns(t, server, 1)

	subscribed := NewConnections()
	subscribed.Union(server.Connections())
	require.Equal(1, subscribed.Len())

	require.NoError(conn.Close())
	waitForConns(t, server, 0)

	inactive := server.Publish([]byte("late"), subscribed)
	require.Len(inactive, 1)
}

func TestConnectionSendAfterDeactivate(t *testing.T) {
	require := require.New(t)
	c := &Connection{send: make(chan []byte, 1)}
	c.active.Store(true)

	require.True(c.Send([]byte{1}))
	// queue is full
	require.False(c.Send([]byte{2}))

	c.deactivate()
	c.deactivate()
	require.False(c.Send([]byte{3}))
}
