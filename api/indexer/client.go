// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/requester"
)

// NewClient connects to the indexer served under [uri], the API base URL.
func NewClient(uri string) *Client {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint

	return &Client{
		requester: requester.New(uri, Name),
	}
}

type Client struct {
	requester *requester.EndpointRequester
}

func (c *Client) GetTx(ctx context.Context, txID ids.ID) (*Entry, bool, error) {
	resp := GetTxResponse{}
	err := c.requester.SendRequest(
		ctx,
		"getTx",
		&GetTxRequest{TxID: txID},
		&resp,
	)
	switch {
	// We use string parsing here because the JSON-RPC library we use may not
	// allows us to perform errors.Is.
	case err != nil && strings.Contains(err.Error(), ErrTxNotFound.Error()):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return resp.Entry, true, nil
}

func (c *Client) GetAccountTxs(ctx context.Context, addr codec.Address, limit int) ([]*Entry, error) {
	resp := GetAccountTxsResponse{}
	err := c.requester.SendRequest(
		ctx,
		"getAccountTxs",
		&GetAccountTxsRequest{Address: addr, Limit: limit},
		&resp,
	)
	return resp.Entries, err
}

func (c *Client) LastSequence(ctx context.Context) (uint64, error) {
	resp := LastSequenceResponse{}
	err := c.requester.SendRequest(
		ctx,
		"lastSequence",
		nil,
		&resp,
	)
	return resp.Sequence, err
}
