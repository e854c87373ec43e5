// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/requester"
	"github.com/ava-labs/counterprogram/runtime"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

// NewJSONRPCClient connects to the counter service under [uri], the API
// base URL.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (*PingReply, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) GetAccount(ctx context.Context, addr codec.Address) (*AccountReply, error) {
	resp := new(AccountReply)
	err := cli.requester.SendRequest(
		ctx,
		"getAccount",
		&AccountArgs{Address: addr},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Airdrop(ctx context.Context, addr codec.Address, lamports uint64) (uint64, error) {
	resp := new(AirdropReply)
	err := cli.requester.SendRequest(
		ctx,
		"airdrop",
		&AirdropArgs{Address: addr, Lamports: lamports},
		resp,
	)
	return resp.Balance, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx *runtime.Transaction) (*runtime.Result, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: tx.Bytes()},
		resp,
	)
	return resp.Result, err
}

// SubmitTxs submits [txs] as one batch. Either every signature verifies or
// nothing is executed.
func (cli *JSONRPCClient) SubmitTxs(ctx context.Context, txs ...*runtime.Transaction) ([]*runtime.Result, error) {
	args := &SubmitTxsArgs{Txs: make([][]byte, 0, len(txs))}
	for _, tx := range txs {
		args.Txs = append(args.Txs, tx.Bytes())
	}
	resp := new(TxsReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTxs",
		args,
		resp,
	)
	return resp.Results, err
}

func (cli *JSONRPCClient) GetTransaction(ctx context.Context, txID ids.ID) (*runtime.Result, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"getTransaction",
		&GetTransactionArgs{TxID: txID},
		resp,
	)
	return resp.Result, err
}

func (cli *JSONRPCClient) MinimumBalance(ctx context.Context, size uint64) (uint64, error) {
	resp := new(MinimumBalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"minimumBalance",
		&MinimumBalanceArgs{Size: size},
		resp,
	)
	return resp.Lamports, err
}
