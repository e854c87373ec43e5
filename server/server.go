// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var _ Server = (*server)(nil)

// Server routes API handlers behind host filtering, cors and gzip.
type Server interface {
	// AddRoute registers [handler] at [endpoint].
	AddRoute(handler http.Handler, endpoint string) error
	// Addr is the address the server listens on.
	Addr() net.Addr
	// Dispatch serves until Shutdown is called.
	Dispatch() error
	Shutdown() error
}

type Config struct {
	ListenAddress   string        `yaml:"listenAddress" env:"LISTEN_ADDRESS"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" env:"ALLOWED_ORIGINS" envSeparator:","`
	AllowedHosts    []string      `yaml:"allowedHosts" env:"ALLOWED_HOSTS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`

	ReadTimeout       time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
}

func NewDefaultConfig() Config {
	return Config{
		ListenAddress:     "127.0.0.1:9650",
		AllowedOrigins:    []string{"*"},
		AllowedHosts:      []string{"localhost"},
		ShutdownTimeout:   10 * time.Second,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type server struct {
	log             logging.Logger
	shutdownTimeout time.Duration

	router   *router
	srv      *http.Server
	listener net.Listener
}

// New builds a server on [listener]. [wrappers] are applied outermost last.
func New(log logging.Logger, listener net.Listener, cfg Config, wrappers ...Wrapper) Server {
	router := newRouter()
	var handler http.Handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(filterInvalidHosts(router, cfg.AllowedHosts))
	handler = gziphandler.GzipHandler(handler)
	for _, w := range wrappers {
		handler = w.WrapHandler(handler)
	}

	log.Info("API created",
		zap.Strings("allowedOrigins", cfg.AllowedOrigins),
		zap.Strings("allowedHosts", cfg.AllowedHosts),
		zap.Stringer("address", listener.Addr()),
	)
	return &server{
		log:             log,
		shutdownTimeout: cfg.ShutdownTimeout,
		router:          router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		listener: listener,
	}
}

func (s *server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *server) AddRoute(handler http.Handler, endpoint string) error {
	s.log.Info("adding route",
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter(endpoint, handler)
}

// Shutdown waits up to the shutdown timeout for requests in flight and then
// closes any connection left.
func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	_ = s.srv.Close()
	return err
}
