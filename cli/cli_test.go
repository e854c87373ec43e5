// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/api/indexer"
	"github.com/ava-labs/counterprogram/api/jsonrpc"
	"github.com/ava-labs/counterprogram/config"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/utils"
)

const lamportsPerSol = 1_000_000_000

func testConfig(t *testing.T) config.Config {
	cfg := config.NewDefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.HTTP.ListenAddress = "127.0.0.1:0"
	return cfg
}

func newHandler(t *testing.T, cfg config.Config) *Handler {
	h, err := New(context.Background(), cfg, logging.NoLog{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, h.Close())
	})
	return h
}

func TestKeys(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cfg := testConfig(t)
	h, err := New(ctx, cfg, logging.NoLog{})
	require.NoError(err)

	alice, err := h.CreateKey(ctx, "alice")
	require.NoError(err)
	bob, err := h.CreateKey(ctx, "bob")
	require.NoError(err)
	require.NotEqual(alice, bob)

	_, err = h.CreateKey(ctx, "alice")
	require.ErrorIs(err, ErrDuplicate)
	_, err = h.CreateKey(ctx, "")
	require.ErrorIs(err, ErrInvalidKeyName)
	_, err = h.CreateKey(ctx, alice.String())
	require.ErrorIs(err, ErrInvalidKeyName)
	_, err = h.GetKey(ctx, "carol")
	require.ErrorIs(err, ErrKeyNotFound)

	keys, err := h.Keys(ctx)
	require.NoError(err)
	require.Equal([]NamedKey{{"alice", alice}, {"bob", bob}}, keys)
	require.NoError(h.PrintKeys(ctx))

	// Keys survive a reopen.
	require.NoError(h.Close())
	require.NoError(h.Close())
	h = newHandler(t, cfg)
	keys, err = h.Keys(ctx)
	require.NoError(err)
	require.Len(keys, 2)
	priv, err := h.GetKey(ctx, "bob")
	require.NoError(err)
	require.Equal(bob, priv.Address())
}

func TestImportExportKey(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newHandler(t, testConfig(t))

	alice, err := h.CreateKey(ctx, "alice")
	require.NoError(err)
	path := filepath.Join(t.TempDir(), "alice.pk")
	require.NoError(h.ExportKey(ctx, "alice", path))
	require.ErrorIs(h.ExportKey(ctx, "bob", path), ErrKeyNotFound)

	other := newHandler(t, testConfig(t))
	addr, err := other.ImportKey(ctx, "alice", path)
	require.NoError(err)
	require.Equal(alice, addr)
	_, err = other.ImportKey(ctx, "alice", path)
	require.ErrorIs(err, ErrDuplicate)

	short := filepath.Join(t.TempDir(), "short.pk")
	require.NoError(utils.SaveBytes(short, []byte{1, 2, 3}))
	_, err = other.ImportKey(ctx, "short", short)
	require.ErrorIs(err, utils.ErrInvalidSize)
}

func TestResolve(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newHandler(t, testConfig(t))

	alice, err := h.CreateKey(ctx, "alice")
	require.NoError(err)

	addr, priv, err := h.resolve(ctx, "alice")
	require.NoError(err)
	require.Equal(alice, addr)
	require.NotNil(priv)

	addr, priv, err = h.resolve(ctx, alice.String())
	require.NoError(err)
	require.Equal(alice, addr)
	require.Nil(priv)

	_, _, err = h.resolve(ctx, "nobody")
	require.ErrorIs(err, ErrKeyNotFound)
}

func TestCounterLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newHandler(t, testConfig(t))

	_, err := h.CreateKey(ctx, "payer")
	require.NoError(err)
	counter, err := h.CreateKey(ctx, "counter")
	require.NoError(err)
	balance, err := h.Airdrop(ctx, "payer", lamportsPerSol)
	require.NoError(err)
	require.Equal(uint64(lamportsPerSol), balance)

	result, err := h.Initialize(ctx, "payer", "counter", 42)
	require.NoError(err)
	require.True(result.Success, result.Error)
	v, err := h.Get(ctx, "counter")
	require.NoError(err)
	require.Equal(uint64(42), v)

	result, err = h.Increment(ctx, "counter", "")
	require.NoError(err)
	require.True(result.Success)
	result, err = h.Decrement(ctx, counter.String(), "payer")
	require.NoError(err)
	require.True(result.Success)
	result, err = h.Decrement(ctx, "counter", "")
	require.NoError(err)
	require.True(result.Success)
	v, err = h.Get(ctx, counter.String())
	require.NoError(err)
	require.Equal(uint64(41), v)

	// Initializing twice fails in the allocator.
	result, err = h.Initialize(ctx, "payer", "counter", 7)
	require.NoError(err)
	require.False(result.Success)
	require.Equal(program.KindProvisioning.String(), result.Kind)

	_, err = h.Get(ctx, "payer")
	require.ErrorIs(err, ErrNotACounter)
	_, err = h.Increment(ctx, "counter", "nobody")
	require.ErrorIs(err, ErrKeyNotFound)

	entries, err := h.Indexer().GetAccountTransactions(ctx, counter, indexer.DefaultLimit)
	require.NoError(err)
	require.Len(entries, 5)
	require.Equal(h.Runtime().Sequence(), entries[0].Sequence)
}

func TestInitializeUnfunded(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	h := newHandler(t, testConfig(t))

	_, err := h.CreateKey(ctx, "payer")
	require.NoError(err)
	_, err = h.CreateKey(ctx, "counter")
	require.NoError(err)

	result, err := h.Initialize(ctx, "payer", "counter", 1)
	require.NoError(err)
	require.False(result.Success)
	require.Equal(program.KindProvisioning.String(), result.Kind)

	acct, err := h.Runtime().GetAccount(ctx, result.Accounts[0])
	require.NoError(err)
	require.Equal(runtime.SystemProgramID, acct.Owner)
}

func TestIndexDisabled(t *testing.T) {
	require := require.New(t)
	cfg := testConfig(t)
	cfg.Index.Enabled = false
	h := newHandler(t, cfg)
	require.Nil(h.Indexer())
}

func TestServe(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newHandler(t, testConfig(t))

	_, err := h.CreateKey(ctx, "payer")
	require.NoError(err)
	_, err = h.Airdrop(ctx, "payer", lamportsPerSol)
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	srv, err := h.NewServer(listener)
	require.NoError(err)
	done := make(chan error, 1)
	go func() {
		done <- h.run(ctx, srv)
	}()
	uri := "http://" + srv.Addr().String()

	reply, err := jsonrpc.NewJSONRPCClient(uri).Ping(ctx)
	require.NoError(err)
	require.True(reply.Success)
	require.Equal(config.DefaultProgramID, reply.ProgramID)

	seq, err := indexer.NewClient(uri).LastSequence(ctx)
	require.NoError(err)
	require.Zero(seq)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+MetricsEndpoint, nil)
	require.NoError(err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Contains(string(body), "runtime_airdrops 1")

	cancel()
	require.NoError(<-done)
}
