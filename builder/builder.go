// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package builder constructs instructions and transactions for the counter
// program.
package builder

import (
	"time"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/runtime"
)

// Initialize creates [counter] funded by [payer] and stores [value] in it.
// Both [payer] and [counter] must sign.
func Initialize(programID, counter, payer codec.Address, value uint64) *runtime.Instruction {
	return &runtime.Instruction{
		ProgramID: programID,
		Accounts: []*runtime.AccountMeta{
			runtime.NewAccountMeta(counter, true),
			runtime.NewAccountMeta(payer, true),
			runtime.NewReadonlyAccountMeta(runtime.SystemProgramID, false),
		},
		Data: program.Marshal(&program.Initialize{InitialValue: value}),
	}
}

func Increment(programID, counter codec.Address) *runtime.Instruction {
	return step(programID, counter, &program.Increment{})
}

func Decrement(programID, counter codec.Address) *runtime.Instruction {
	return step(programID, counter, &program.Decrement{})
}

func step(programID, counter codec.Address, i program.Instruction) *runtime.Instruction {
	return &runtime.Instruction{
		ProgramID: programID,
		Accounts:  []*runtime.AccountMeta{runtime.NewAccountMeta(counter, false)},
		Data:      program.Marshal(i),
	}
}

// Transfer moves lamports between two system accounts. [from] must sign.
func Transfer(from, to codec.Address, lamports uint64) *runtime.Instruction {
	return &runtime.Instruction{
		ProgramID: runtime.SystemProgramID,
		Accounts: []*runtime.AccountMeta{
			runtime.NewAccountMeta(from, true),
			runtime.NewAccountMeta(to, false),
		},
		Data: runtime.TransferData(lamports),
	}
}

// Nonce returns a nonce that is unique per call within this process.
func Nonce() uint64 {
	return uint64(time.Now().UnixNano())
}

// Sign wraps [instructions] into a transaction signed by [signers].
func Sign(signers []ed25519.PrivateKey, instructions ...*runtime.Instruction) (*runtime.Transaction, error) {
	return runtime.NewTx(Nonce(), instructions...).Sign(signers...)
}
