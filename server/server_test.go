// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, allowedHosts []string) Server {
	require := require.New(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	cfg := NewDefaultConfig()
	cfg.AllowedHosts = allowedHosts
	cfg.ShutdownTimeout = time.Second
	s := New(logging.NoLog{}, listener, cfg, NewRequestLogger(logging.NoLog{}))
	go func() {
		if err := s.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("unexpected dispatch error: %v", err)
		}
	}()
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func get(t *testing.T, s Server, path string, host string) (int, string) {
	req, err := http.NewRequest(http.MethodGet, "http://"+s.Addr().String()+path, nil)
	require.NoError(t, err)
	if host != "" {
		req.Host = host
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAddRoute(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t, []string{"*"})

	hello := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	require.NoError(s.AddRoute(hello, "/hello"))
	require.ErrorIs(s.AddRoute(hello, "/hello"), errAlreadyReserved)

	code, body := get(t, s, "/hello", "")
	require.Equal(http.StatusOK, code)
	require.Equal("hello", body)

	code, _ = get(t, s, "/missing", "")
	require.Equal(http.StatusNotFound, code)
}

func TestFilterInvalidHosts(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t, []string{"localhost"})
	require.NoError(s.AddRoute(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), "/ok"))

	tests := []struct {
		host string
		code int
	}{
		{host: "localhost", code: http.StatusOK},
		{host: "LOCALHOST:9650", code: http.StatusOK},
		{host: "127.0.0.1:9650", code: http.StatusOK},
		{host: "example.com", code: http.StatusForbidden},
	}
	for _, tt := range tests {
		code, _ := get(t, s, "/ok", tt.host)
		require.Equal(tt.code, code, tt.host)
	}
}

func TestFilterInvalidHostsWildcard(t *testing.T) {
	require := require.New(t)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h := filterInvalidHosts(next, []string{"localhost", wildcard})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	h.ServeHTTP(w, r)
	require.Equal(http.StatusOK, w.Code)
}

func TestMetricsHandler(t *testing.T) {
	require := require.New(t)
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "test",
		Name:      "requests",
		Help:      "number of requests",
	})
	require.NoError(registry.Register(counter))
	counter.Add(3)

	s := newTestServer(t, []string{"*"})
	require.NoError(s.AddRoute(NewMetricsHandler(registry), "/metrics"))

	code, body := get(t, s, "/metrics", "")
	require.Equal(http.StatusOK, code)
	require.True(strings.Contains(body, "test_requests 3"), body)
}
