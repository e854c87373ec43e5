// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/program"
)

const (
	maxResultString = 1024
	maxResultItems  = MaxInstructions * MaxInstructionAccounts
)

// Result is the outcome of one processed transaction.
type Result struct {
	TxID      ids.ID `json:"txId"`
	Sequence  uint64 `json:"sequence"`
	Timestamp int64  `json:"timestamp"`
	Success   bool   `json:"success"`
	Kind      string `json:"kind"`
	Error     string `json:"error,omitempty"`

	// ProgramIDs and Instructions are parallel, one entry per instruction.
	ProgramIDs   []codec.Address `json:"programIds"`
	Instructions []string        `json:"instructions"`
	// Accounts lists every referenced account in first-reference order.
	Accounts []codec.Address `json:"accounts"`
}

func (r *Result) Marshal(p *codec.Packer) {
	p.PackFixedBytes(r.TxID[:])
	p.PackUint64(r.Sequence)
	p.PackUint64(uint64(r.Timestamp))
	p.PackBool(r.Success)
	p.PackBytes([]byte(r.Kind))
	p.PackBytes([]byte(r.Error))
	p.PackInt(uint32(len(r.Instructions)))
	for i, name := range r.Instructions {
		p.PackAddress(r.ProgramIDs[i])
		p.PackBytes([]byte(name))
	}
	p.PackInt(uint32(len(r.Accounts)))
	for _, a := range r.Accounts {
		p.PackAddress(a)
	}
}

func (r *Result) Bytes() []byte {
	p := codec.NewWriter(256, MaxTransactionSize)
	r.Marshal(p)
	return p.Bytes()
}

func UnmarshalResult(b []byte) (*Result, error) {
	p := codec.NewReader(b, MaxTransactionSize)
	var (
		r        Result
		txID     []byte
		kind     []byte
		errBytes []byte
	)
	p.UnpackFixedBytes(ids.IDLen, &txID)
	copy(r.TxID[:], txID)
	r.Sequence = p.UnpackUint64(false)
	r.Timestamp = int64(p.UnpackUint64(false))
	r.Success = p.UnpackBool()
	p.UnpackBytes(maxResultString, false, &kind)
	p.UnpackBytes(maxResultString, false, &errBytes)
	r.Kind, r.Error = string(kind), string(errBytes)

	n := p.UnpackInt(false)
	if n > MaxInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrInvalidTransaction, n)
	}
	for i := uint32(0); i < n; i++ {
		var (
			id   codec.Address
			name []byte
		)
		p.UnpackAddress(false, &id)
		p.UnpackBytes(maxResultString, false, &name)
		r.ProgramIDs = append(r.ProgramIDs, id)
		r.Instructions = append(r.Instructions, string(name))
	}
	n = p.UnpackInt(false)
	if n > maxResultItems {
		return nil, fmt.Errorf("%w: %d accounts", ErrInvalidTransaction, n)
	}
	for i := uint32(0); i < n; i++ {
		var a codec.Address
		p.UnpackAddress(false, &a)
		r.Accounts = append(r.Accounts, a)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

func resultKey(txID ids.ID) []byte {
	k := make([]byte, 1+ids.IDLen)
	k[0] = transactionPrefix
	copy(k[1:], txID[:])
	return k
}

func sequenceKey() []byte {
	return []byte{sequencePrefix}
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidSignature, "InvalidSignature"},
	{ErrMissingRequiredSignature, "MissingRequiredSignature"},
	{ErrDuplicateSigner, "DuplicateSigner"},
	{ErrUnknownProgram, "UnknownProgram"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrInsufficientFundsRent, "InsufficientFundsForRent"},
	{ErrAccountAlreadyInUse, "AccountAlreadyInUse"},
	{ErrReadonlyAccountModified, "ReadonlyAccountModified"},
	{ErrExternalAccountDataModified, "ExternalAccountDataModified"},
	{ErrExternalAccountLamportSpend, "ExternalAccountLamportSpend"},
	{ErrModifiedProgramID, "ModifiedProgramId"},
	{ErrUnbalancedInstruction, "UnbalancedInstruction"},
	{ErrExecutableModified, "ExecutableModified"},
	{ErrCallDepth, "CallDepth"},
}

// ErrorKind names the failure reason of [err]. Program errors keep the kind
// reported by [program.Kind]; runtime failures get their own names.
func ErrorKind(err error) string {
	if k := program.Kind(err); k != program.KindUnknown {
		return k.String()
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return program.KindUnknown.String()
}

// Listener is notified of every processed transaction after its effects
// are committed.
type Listener interface {
	Accepted(ctx context.Context, tx *Transaction, result *Result)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(context.Context, *Transaction, *Result)

func (f ListenerFunc) Accepted(ctx context.Context, tx *Transaction, result *Result) {
	f(ctx, tx, result)
}
