// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/builder"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/state"
	"github.com/ava-labs/counterprogram/trace"
)

var programID = codec.Address{0xc0, 0x01}

type stream struct {
	ctx     context.Context
	rt      *runtime.Runtime
	w       *WebSocketServer
	uri     string
	payer   ed25519.PrivateKey
	counter ed25519.PrivateKey
}

func newStream(t *testing.T) *stream {
	require := require.New(t)
	ctx := context.Background()
	rt, _, err := runtime.New(ctx, logging.NoLog{}, trace.Noop("test"), state.NewInMemoryStore(), runtime.DefaultRent())
	require.NoError(err)
	require.NoError(rt.Register(program.New(programID, rt.Allocator(), rt.Rent(), logging.NoLog{})))

	backend := api.NewBackend(logging.NoLog{}, trace.Noop("test"), programID, rt)
	w, pubsubServer := NewWebSocketServer(backend, NewDefaultConfig())
	rt.AddListener(w)

	h, err := NewWebSocketServerFactory(pubsubServer).New(backend)
	require.NoError(err)
	mux := http.NewServeMux()
	mux.Handle(h.Path, h.Handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	payer, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	counter, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	_, err = rt.Airdrop(ctx, payer.Address(), consts.LamportsPerToken)
	require.NoError(err)
	return &stream{ctx: ctx, rt: rt, w: w, uri: srv.URL, payer: payer, counter: counter}
}

func (s *stream) client(t *testing.T) *WebSocketClient {
	cli, err := NewWebSocketClient(s.uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

func (s *stream) waitForListeners(t *testing.T, results int, accounts int) {
	require.Eventually(t, func() bool {
		s.w.accountL.Lock()
		defer s.w.accountL.Unlock()
		return s.w.resultListeners.Len() == results && len(s.w.accountListeners) == accounts
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *stream) initialize(t *testing.T) *runtime.Transaction {
	tx, err := builder.Sign(
		[]ed25519.PrivateKey{s.payer, s.counter},
		builder.Initialize(programID, s.counter.Address(), s.payer.Address(), 42),
	)
	require.NoError(t, err)
	return tx
}

func TestSubmitOverSocket(t *testing.T) {
	require := require.New(t)
	s := newStream(t)
	cli := s.client(t)

	tx := s.initialize(t)
	require.NoError(cli.SubmitTx(tx))
	msg, err := cli.Listen()
	require.NoError(err)
	require.Equal(tx.ID(), msg.TxID)
	require.Empty(msg.Error)
	require.NotNil(msg.Result)
	require.True(msg.Result.Success)
	require.Equal([]string{"initialize"}, msg.Result.Instructions)

	// the same transaction again is rejected by the runtime
	require.NoError(cli.SubmitTx(tx))
	msg, err = cli.Listen()
	require.NoError(err)
	require.Equal(tx.ID(), msg.TxID)
	require.Nil(msg.Result)
	require.Contains(msg.Error, runtime.ErrDuplicateTransaction.Error())

	s.w.txL.Lock()
	require.Empty(s.w.txListeners)
	s.w.txL.Unlock()
}

func TestSubscriptions(t *testing.T) {
	require := require.New(t)
	s := newStream(t)

	all := s.client(t)
	require.NoError(all.RegisterResults())
	counterOnly := s.client(t)
	require.NoError(counterOnly.RegisterAccount(s.counter.Address()))
	s.waitForListeners(t, 1, 1)

	other, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	transfer, err := builder.Sign([]ed25519.PrivateKey{s.payer}, builder.Transfer(s.payer.Address(), other.Address(), 10))
	require.NoError(err)
	result, err := s.rt.ProcessTransaction(s.ctx, transfer)
	require.NoError(err)
	require.True(result.Success)

	initialize := s.initialize(t)
	_, err = s.rt.ProcessTransaction(s.ctx, initialize)
	require.NoError(err)

	msg, err := all.Listen()
	require.NoError(err)
	require.Equal(transfer.ID(), msg.TxID)
	msg, err = all.Listen()
	require.NoError(err)
	require.Equal(initialize.ID(), msg.TxID)

	// the transfer never referenced the counter
	msg, err = counterOnly.Listen()
	require.NoError(err)
	require.Equal(initialize.ID(), msg.TxID)
	require.Equal(uint64(2), msg.Result.Sequence)
}

func TestClosedSubscriberPruned(t *testing.T) {
	require := require.New(t)
	s := newStream(t)

	cli := s.client(t)
	require.NoError(cli.RegisterAccount(s.counter.Address()))
	s.waitForListeners(t, 0, 1)
	require.NoError(cli.Close())
	require.Eventually(func() bool {
		return s.w.s.Connections().Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	_, err := s.rt.ProcessTransaction(s.ctx, s.initialize(t))
	require.NoError(err)
	s.waitForListeners(t, 0, 0)
}

func TestBadMessages(t *testing.T) {
	require := require.New(t)
	s := newStream(t)
	cli := s.client(t)

	require.NoError(cli.write([]byte{AccountMode, 1, 2, 3}))
	msg, err := cli.Listen()
	require.NoError(err)
	require.Contains(msg.Error, codec.ErrInvalidAddress.Error())

	require.NoError(cli.write([]byte{TxMode, 0xff}))
	msg, err = cli.Listen()
	require.NoError(err)
	require.NotEmpty(msg.Error)

	require.NoError(cli.write([]byte{0x7f}))
	msg, err = cli.Listen()
	require.NoError(err)
	require.Equal(ErrUnexpectedMode.Error(), msg.Error)
}
