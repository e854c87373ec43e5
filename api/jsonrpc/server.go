// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/storage"
)

const (
	Endpoint = "/counterapi"

	// MaxBatchSize bounds the transactions accepted by one submitTxs call.
	MaxBatchSize = 256
)

var (
	ErrEmptyTx    = errors.New("empty transaction")
	ErrEmptyBatch = errors.New("empty batch")
	ErrBatchSize  = errors.New("batch too large")

	_ api.HandlerFactory[api.Backend] = (*JSONRPCServerFactory)(nil)
)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(backend api.Backend) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(backend))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	backend api.Backend
}

func NewJSONRPCServer(backend api.Backend) *JSONRPCServer {
	return &JSONRPCServer{backend}
}

type PingReply struct {
	Success   bool          `json:"success"`
	ProgramID codec.Address `json:"programId"`
	Sequence  uint64        `json:"sequence"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.backend.Logger().Info("ping")
	reply.Success = true
	reply.ProgramID = j.backend.ProgramID()
	reply.Sequence = j.backend.Sequence()
	return nil
}

type AccountArgs struct {
	Address codec.Address `json:"address"`
}

type AccountReply struct {
	Lamports   uint64        `json:"lamports"`
	Owner      codec.Address `json:"owner"`
	Executable bool          `json:"executable"`
	Data       []byte        `json:"data"`
	// Counter is set when the account is a well-formed counter record.
	Counter *uint64 `json:"counter,omitempty"`
}

func (j *JSONRPCServer) GetAccount(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.GetAccount")
	defer span.End()

	acct, err := j.backend.GetAccount(ctx, args.Address)
	if err != nil {
		return err
	}
	reply.Lamports = acct.Lamports
	reply.Owner = acct.Owner
	reply.Executable = acct.Executable
	reply.Data = acct.Data
	if acct.Owner != j.backend.ProgramID() {
		return nil
	}
	if record, err := storage.DecodeCounter(acct.Data); err == nil {
		reply.Counter = &record.Counter
	}
	return nil
}

type AirdropArgs struct {
	Address  codec.Address `json:"address"`
	Lamports uint64        `json:"lamports"`
}

type AirdropReply struct {
	Balance uint64 `json:"balance"`
}

func (j *JSONRPCServer) Airdrop(req *http.Request, args *AirdropArgs, reply *AirdropReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Airdrop")
	defer span.End()

	balance, err := j.backend.Airdrop(ctx, args.Address, args.Lamports)
	if err != nil {
		return err
	}
	reply.Balance = balance
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type TxReply struct {
	Result *runtime.Result `json:"result"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *TxReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	if len(args.Tx) == 0 {
		return ErrEmptyTx
	}
	tx, err := runtime.UnmarshalTx(args.Tx)
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal transaction", err)
	}
	result, err := j.backend.ProcessTransaction(ctx, tx)
	if err != nil {
		j.backend.Logger().Debug("rejected transaction",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	reply.Result = result
	return nil
}

type SubmitTxsArgs struct {
	Txs [][]byte `json:"txs"`
}

type TxsReply struct {
	Results []*runtime.Result `json:"results"`
}

// SubmitTxs verifies every transaction before executing any of them in order.
// Execution stops at the first transaction the runtime rejects and the
// results of those already executed are returned with the error.
func (j *JSONRPCServer) SubmitTxs(req *http.Request, args *SubmitTxsArgs, reply *TxsReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTxs")
	defer span.End()

	switch {
	case len(args.Txs) == 0:
		return ErrEmptyBatch
	case len(args.Txs) > MaxBatchSize:
		return fmt.Errorf("%w: %d > %d", ErrBatchSize, len(args.Txs), MaxBatchSize)
	}
	txs := make([]*runtime.Transaction, 0, len(args.Txs))
	for i, b := range args.Txs {
		if len(b) == 0 {
			return fmt.Errorf("%w: index %d", ErrEmptyTx, i)
		}
		tx, err := runtime.UnmarshalTx(b)
		if err != nil {
			return fmt.Errorf("%w: unable to unmarshal transaction %d", err, i)
		}
		txs = append(txs, tx)
	}
	results, err := j.backend.ProcessBatch(ctx, txs)
	reply.Results = results
	if err != nil {
		j.backend.Logger().Debug("rejected batch",
			zap.Int("txs", len(txs)),
			zap.Int("processed", len(results)),
			zap.Error(err),
		)
	}
	return err
}

type GetTransactionArgs struct {
	TxID ids.ID `json:"txId"`
}

func (j *JSONRPCServer) GetTransaction(req *http.Request, args *GetTransactionArgs, reply *TxReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.GetTransaction")
	defer span.End()

	result, err := j.backend.GetTransaction(ctx, args.TxID)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}

type MinimumBalanceArgs struct {
	Size uint64 `json:"size"`
}

type MinimumBalanceReply struct {
	Lamports uint64 `json:"lamports"`
}

func (j *JSONRPCServer) MinimumBalance(req *http.Request, args *MinimumBalanceArgs, reply *MinimumBalanceReply) error {
	lamports, err := j.backend.Rent().MinimumBalance(req.Context(), args.Size)
	if err != nil {
		return err
	}
	reply.Lamports = lamports
	return nil
}
