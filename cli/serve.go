// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/api/indexer"
	"github.com/ava-labs/counterprogram/api/jsonrpc"
	"github.com/ava-labs/counterprogram/api/ws"
	"github.com/ava-labs/counterprogram/server"
)

const MetricsEndpoint = "/metrics"

// NewServer builds the API server over the ledger on [listener]. The
// websocket stream, when enabled, is registered as a runtime listener.
func (h *Handler) NewServer(listener net.Listener) (server.Server, error) {
	srv := server.New(h.log, listener, h.cfg.HTTP, server.NewRequestLogger(h.log))

	backend := api.NewBackend(h.log, h.tracer, h.cfg.ProgramID, h.rt)
	factories := []api.HandlerFactory[api.Backend]{jsonrpc.JSONRPCServerFactory{}}
	if h.idx != nil {
		factories = append(factories, indexer.NewHandlerFactory(h.idx))
	}
	if h.cfg.WS.Enabled {
		wsServer, pubsubServer := ws.NewWebSocketServer(backend, h.cfg.WS)
		h.rt.AddListener(wsServer)
		factories = append(factories, ws.NewWebSocketServerFactory(pubsubServer))
	}
	for _, f := range factories {
		handler, err := f.New(backend)
		if err != nil {
			return nil, err
		}
		if err := srv.AddRoute(handler.Handler, handler.Path); err != nil {
			return nil, err
		}
	}
	if err := srv.AddRoute(server.NewMetricsHandler(h.gatherer), MetricsEndpoint); err != nil {
		return nil, err
	}
	return srv, nil
}

// Serve runs the API server on the configured listen address until [ctx] is
// done.
func (h *Handler) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", h.cfg.HTTP.ListenAddress)
	if err != nil {
		return err
	}
	srv, err := h.NewServer(listener)
	if err != nil {
		_ = listener.Close()
		return err
	}
	return h.run(ctx, srv)
}

// run dispatches [srv] until [ctx] is done or serving fails.
func (h *Handler) run(ctx context.Context, srv server.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Dispatch()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		h.log.Info("shutting down API server")
		return srv.Shutdown()
	})
	h.log.Info("serving API",
		zap.Stringer("address", srv.Addr()),
	)
	return g.Wait()
}
