// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/trace"
)

var _ Backend = (*backend)(nil)

// Ledger is the part of the host runtime exposed over the API.
type Ledger interface {
	GetAccount(ctx context.Context, addr codec.Address) (*runtime.Account, error)
	Airdrop(ctx context.Context, addr codec.Address, lamports uint64) (uint64, error)
	ProcessTransaction(ctx context.Context, tx *runtime.Transaction) (*runtime.Result, error)
	ProcessBatch(ctx context.Context, txs []*runtime.Transaction) ([]*runtime.Result, error)
	GetTransaction(ctx context.Context, txID ids.ID) (*runtime.Result, error)
	Rent() runtime.Rent
	Sequence() uint64
}

type Backend interface {
	Ledger

	Logger() logging.Logger
	Tracer() trace.Tracer
	// ProgramID is the address the counter program is deployed at.
	ProgramID() codec.Address
}

type backend struct {
	*runtime.Runtime

	log       logging.Logger
	tracer    trace.Tracer
	programID codec.Address
}

func NewBackend(log logging.Logger, tracer trace.Tracer, programID codec.Address, rt *runtime.Runtime) Backend {
	return &backend{
		Runtime:   rt,
		log:       log,
		tracer:    tracer,
		programID: programID,
	}
}

func (b *backend) Logger() logging.Logger {
	return b.log
}

func (b *backend) Tracer() trace.Tracer {
	return b.tracer
}

func (b *backend) ProgramID() codec.Address {
	return b.programID
}
