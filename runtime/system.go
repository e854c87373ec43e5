// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
	"github.com/ava-labs/counterprogram/program"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// SystemProgramID is the well-known id of the system program. Its base58
// form is 11111111111111111111111111111111.
var SystemProgramID = codec.EmptyAddress

const (
	createAccountID uint8 = 0
	transferID      uint8 = 2
)

var (
	_ program.Allocator = (*SystemProgram)(nil)
	_ Program           = (*SystemProgram)(nil)
)

// SystemProgram creates accounts and moves lamports between system-owned
// accounts.
type SystemProgram struct {
	log logging.Logger
}

func NewSystemProgram(log logging.Logger) *SystemProgram {
	return &SystemProgram{log: log}
}

func (*SystemProgram) ProgramID() codec.Address {
	return SystemProgramID
}

func (*SystemProgram) Name() string {
	return "system"
}

func (*SystemProgram) InstructionName(data []byte) string {
	if len(data) == 0 {
		return "invalid"
	}
	switch data[0] {
	case createAccountID:
		return "createAccount"
	case transferID:
		return "transfer"
	default:
		return "invalid"
	}
}

// CreateAccount implements [program.Allocator]. Nothing is modified unless
// every check passes.
func (s *SystemProgram) CreateAccount(_ context.Context, params *program.CreateAccountParams) error {
	if params.SystemProgram == nil || params.SystemProgram.Key != SystemProgramID {
		return ErrMissingSystemProgram
	}
	payer, account := params.Payer, params.Account
	if !payer.IsSigner {
		return fmt.Errorf("%w: payer %s", ErrMissingRequiredSignature, payer.Key)
	}
	if !account.IsSigner {
		return fmt.Errorf("%w: new account %s", ErrMissingRequiredSignature, account.Key)
	}
	if account.Lamports != 0 || len(account.Data) != 0 || account.Owner != SystemProgramID {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, account.Key)
	}
	if params.Space > MaxAccountDataSize {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidAccountDataLength, params.Space, MaxAccountDataSize)
	}
	if payer.Key == account.Key {
		return fmt.Errorf("%w: payer funds itself", ErrAccountAlreadyInUse)
	}
	remaining, err := smath.Sub(payer.Lamports, params.Lamports)
	if err != nil {
		return fmt.Errorf("%w: need %d have %d", ErrInsufficientFunds, params.Lamports, payer.Lamports)
	}

	payer.Lamports = remaining
	account.Lamports = params.Lamports
	account.Data = make([]byte, params.Space)
	account.Owner = params.Owner
	s.log.Debug("created account",
		zap.Stringer("account", account.Key),
		zap.Stringer("owner", params.Owner),
		zap.Uint64("lamports", params.Lamports),
		zap.Uint64("space", params.Space),
	)
	return nil
}

// Transfer moves [lamports] from a signing system-owned account to [to].
func (*SystemProgram) Transfer(from *program.AccountInfo, to *program.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, from.Key)
	}
	if from.Owner != SystemProgramID || len(from.Data) != 0 {
		return fmt.Errorf("%w: %s carries data", ErrInvalidSystemInstruction, from.Key)
	}
	remaining, err := smath.Sub(from.Lamports, lamports)
	if err != nil {
		return fmt.Errorf("%w: need %d have %d", ErrInsufficientFunds, lamports, from.Lamports)
	}
	credited, err := smath.Add(to.Lamports, lamports)
	if err != nil {
		return err
	}
	from.Lamports = remaining
	to.Lamports = credited
	return nil
}

// Process executes a system instruction submitted directly in a transaction.
//
// CreateAccount: [0, lamports u64, space u64, owner 32 bytes] with accounts
// payer, new account.
// Transfer: [2, lamports u64] with accounts from, to.
func (s *SystemProgram) Process(ctx context.Context, accounts []*program.AccountInfo, data []byte) error {
	p := codec.NewReader(data, len(data))
	typ := p.UnpackByte()
	if err := p.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSystemInstruction, err)
	}
	switch typ {
	case createAccountID:
		lamports := p.UnpackUint64(false)
		space := p.UnpackUint64(false)
		var owner codec.Address
		p.UnpackAddress(false, &owner)
		if err := p.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSystemInstruction, err)
		}
		if len(accounts) < 2 {
			return fmt.Errorf("%w: create account", program.ErrNotEnoughAccountKeys)
		}
		return s.CreateAccount(ctx, &program.CreateAccountParams{
			Payer:         accounts[0],
			Account:       accounts[1],
			SystemProgram: &program.AccountInfo{Key: SystemProgramID},
			Lamports:      lamports,
			Space:         space,
			Owner:         owner,
		})
	case transferID:
		lamports := p.UnpackUint64(true)
		if err := p.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSystemInstruction, err)
		}
		if len(accounts) < 2 {
			return fmt.Errorf("%w: transfer", program.ErrNotEnoughAccountKeys)
		}
		return s.Transfer(accounts[0], accounts[1], lamports)
	default:
		return fmt.Errorf("%w: type %d", ErrInvalidSystemInstruction, typ)
	}
}

// CreateAccountData encodes a direct CreateAccount system instruction.
func CreateAccountData(lamports uint64, space uint64, owner codec.Address) []byte {
	size := consts.ByteLen + 2*consts.Uint64Len + codec.AddressLen
	p := codec.NewWriter(size, size)
	p.PackByte(createAccountID)
	p.PackUint64(lamports)
	p.PackUint64(space)
	p.PackAddress(owner)
	return p.Bytes()
}

// TransferData encodes a Transfer system instruction.
func TransferData(lamports uint64) []byte {
	size := consts.ByteLen + consts.Uint64Len
	p := codec.NewWriter(size, size)
	p.PackByte(transferID)
	p.PackUint64(lamports)
	return p.Bytes()
}
