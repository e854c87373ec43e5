// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/pubsub"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/trace"
)

const Endpoint = "/counterapi/ws"

// Client requests are prefixed with a mode byte.
const (
	// ResultsMode subscribes to every processed transaction.
	ResultsMode byte = iota
	// AccountMode is followed by an address and subscribes to the
	// transactions that reference it.
	AccountMode
	// TxMode is followed by a signed transaction to process. Its result is
	// sent back on the same connection.
	TxMode
)

var (
	ErrUnexpectedMode = errors.New("unexpected message mode")

	_ api.HandlerFactory[api.Backend] = (*WebSocketServerFactory)(nil)
	_ runtime.Listener                = (*WebSocketServer)(nil)
)

type Config struct {
	Enabled            bool `yaml:"enabled"`
	MaxPendingMessages int  `yaml:"maxPendingMessages"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled:            true,
		MaxPendingMessages: 10_000,
	}
}

// Message is the JSON document sent to clients. Error is set, and Result is
// nil, when a transaction submitted over the socket was rejected.
type Message struct {
	TxID   ids.ID          `json:"txId"`
	Result *runtime.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func NewWebSocketServerFactory(server *pubsub.Server) *WebSocketServerFactory {
	return &WebSocketServerFactory{
		handler: server,
	}
}

type WebSocketServerFactory struct {
	handler *pubsub.Server
}

func (w WebSocketServerFactory) New(api.Backend) (api.Handler, error) {
	return api.Handler{
		Path:    Endpoint,
		Handler: w.handler,
	}, nil
}

type WebSocketServer struct {
	ledger api.Ledger
	logger logging.Logger
	tracer trace.Tracer

	s *pubsub.Server

	resultListeners *pubsub.Connections

	accountL         sync.Mutex
	accountListeners map[codec.Address]*pubsub.Connections

	txL         sync.Mutex
	txListeners map[ids.ID]*pubsub.Connections
}

func NewWebSocketServer(backend api.Backend, config Config) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		ledger:           backend,
		logger:           backend.Logger(),
		tracer:           backend.Tracer(),
		resultListeners:  pubsub.NewConnections(),
		accountListeners: map[codec.Address]*pubsub.Connections{},
		txListeners:      map[ids.ID]*pubsub.Connections{},
	}
	cfg := pubsub.NewDefaultServerConfig()
	cfg.MaxPendingMessages = config.MaxPendingMessages
	w.s = pubsub.New(w.logger, cfg, w.MessageCallback())
	return w, w.s
}

func (w *WebSocketServer) AddAccountListener(addr codec.Address, c *pubsub.Connection) {
	w.accountL.Lock()
	defer w.accountL.Unlock()

	connections, ok := w.accountListeners[addr]
	if !ok {
		connections = pubsub.NewConnections()
		w.accountListeners[addr] = connections
	}
	connections.Add(c)
}

// AddTxListener routes the result of [txID] to [c] once. The listener is
// cleared when the transaction is processed or rejected.
func (w *WebSocketServer) AddTxListener(txID ids.ID, c *pubsub.Connection) {
	w.txL.Lock()
	defer w.txL.Unlock()

	connections, ok := w.txListeners[txID]
	if !ok {
		connections = pubsub.NewConnections()
		w.txListeners[txID] = connections
	}
	connections.Add(c)
}

func (w *WebSocketServer) removeTxListeners(txID ids.ID) *pubsub.Connections {
	w.txL.Lock()
	defer w.txL.Unlock()

	listeners, ok := w.txListeners[txID]
	if !ok {
		return pubsub.NewConnections()
	}
	delete(w.txListeners, txID)
	return listeners
}

// Accepted publishes [result] to every connection subscribed to all results,
// to one of the referenced accounts, or to the transaction itself.
func (w *WebSocketServer) Accepted(ctx context.Context, _ *runtime.Transaction, result *runtime.Result) {
	_, span := w.tracer.Start(ctx, "WebSocketServer.Accepted")
	defer span.End()

	targets := pubsub.NewConnections()
	targets.Union(w.resultListeners)
	w.accountL.Lock()
	for _, addr := range result.Accounts {
		if listeners, ok := w.accountListeners[addr]; ok {
			targets.Union(listeners)
		}
	}
	w.accountL.Unlock()
	targets.Union(w.removeTxListeners(result.TxID))
	if targets.Len() == 0 {
		return
	}

	bytes, err := json.Marshal(&Message{TxID: result.TxID, Result: result})
	if err != nil {
		w.logger.Error("failed to marshal result", zap.Error(err))
		return
	}
	inactive := w.s.Publish(bytes, targets)
	w.prune(inactive)
}

// prune drops subscriptions held by closed connections.
func (w *WebSocketServer) prune(inactive []*pubsub.Connection) {
	if len(inactive) == 0 {
		return
	}
	w.accountL.Lock()
	defer w.accountL.Unlock()

	for _, conn := range inactive {
		w.resultListeners.Remove(conn)
		for addr, listeners := range w.accountListeners {
			listeners.Remove(conn)
			if listeners.Len() == 0 {
				delete(w.accountListeners, addr)
			}
		}
	}
}

func (w *WebSocketServer) reply(c *pubsub.Connection, msg *Message) {
	bytes, err := json.Marshal(msg)
	if err != nil {
		w.logger.Error("failed to marshal reply", zap.Error(err))
		return
	}
	_ = c.Send(bytes)
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	return func(msgBytes []byte, c *pubsub.Connection) {
		ctx, span := w.tracer.Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		if len(msgBytes) == 0 {
			w.logger.Debug("received empty message")
			return
		}

		switch msgBytes[0] {
		case ResultsMode:
			w.resultListeners.Add(c)
			w.logger.Debug("added result listener")
		case AccountMode:
			addr, err := codec.ToAddress(msgBytes[1:])
			if err != nil {
				w.logger.Debug("failed to parse address", zap.Error(err))
				w.reply(c, &Message{Error: err.Error()})
				return
			}
			w.AddAccountListener(addr, c)
			w.logger.Debug("added account listener", zap.Stringer("address", addr))
		case TxMode:
			tx, err := runtime.UnmarshalTx(msgBytes[1:])
			if err != nil {
				w.logger.Debug("failed to unmarshal tx",
					zap.Int("len", len(msgBytes)),
					zap.Error(err),
				)
				w.reply(c, &Message{Error: err.Error()})
				return
			}
			txID := tx.ID()
			w.AddTxListener(txID, c)
			if _, err := w.ledger.ProcessTransaction(ctx, tx); err != nil {
				w.removeTxListeners(txID)
				w.logger.Debug("failed to process tx",
					zap.Stringer("txID", txID),
					zap.Error(err),
				)
				w.reply(c, &Message{TxID: txID, Error: err.Error()})
				return
			}
			w.logger.Debug("processed tx", zap.Stringer("txID", txID))
		default:
			w.logger.Debug("unexpected message type",
				zap.Int("len", len(msgBytes)),
				zap.Uint8("mode", msgBytes[0]),
			)
			w.reply(c, &Message{Error: ErrUnexpectedMode.Error()})
		}
	}
}
