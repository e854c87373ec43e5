// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/state"
)

const (
	accountPrefix     byte = 0x0
	sequencePrefix    byte = 0x1
	transactionPrefix byte = 0x2

	// MaxAccountDataSize is the largest data buffer an account may hold.
	MaxAccountDataSize = 10 * 1024 * 1024
)

// Account is the persisted form of a ledger account.
type Account struct {
	Lamports   uint64        `json:"lamports"`
	Data       []byte        `json:"data"`
	Owner      codec.Address `json:"owner"`
	Executable bool          `json:"executable"`
}

// Empty reports whether a is indistinguishable from an account that was
// never written. Empty accounts are removed from state.
func (a *Account) Empty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner == SystemProgramID && !a.Executable
}

func (a *Account) Size() int {
	return consts.Uint64Len + codec.AddressLen + consts.BoolLen + consts.IntLen + len(a.Data)
}

func (a *Account) Marshal(p *codec.Packer) {
	p.PackUint64(a.Lamports)
	p.PackAddress(a.Owner)
	p.PackBool(a.Executable)
	p.PackBytes(a.Data)
}

func (a *Account) Bytes() []byte {
	p := codec.NewWriter(a.Size(), a.Size())
	a.Marshal(p)
	return p.Bytes()
}

func UnmarshalAccount(b []byte) (*Account, error) {
	p := codec.NewReader(b, len(b))
	var a Account
	a.Lamports = p.UnpackUint64(false)
	p.UnpackAddress(false, &a.Owner)
	a.Executable = p.UnpackBool()
	p.UnpackBytes(MaxAccountDataSize, false, &a.Data)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountRecord, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidAccountRecord, p.Remaining())
	}
	return &a, nil
}

func AccountKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	return k
}

// GetAccount reads [addr]. Missing accounts are returned as empty accounts
// owned by the system program.
func GetAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*Account, error) {
	b, err := im.GetValue(ctx, AccountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return &Account{Owner: SystemProgramID}, nil
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalAccount(b)
}

// PutAccount writes [a] to [addr], removing the key when [a] is empty.
func PutAccount(ctx context.Context, mu state.Mutable, addr codec.Address, a *Account) error {
	if a.Empty() {
		return mu.Remove(ctx, AccountKey(addr))
	}
	return mu.Insert(ctx, AccountKey(addr), a.Bytes())
}

func toAccountInfo(addr codec.Address, a *Account) *program.AccountInfo {
	return &program.AccountInfo{
		Key:        addr,
		Lamports:   a.Lamports,
		Data:       a.Data,
		Owner:      a.Owner,
		Executable: a.Executable,
	}
}

func fromAccountInfo(info *program.AccountInfo) *Account {
	return &Account{
		Lamports:   info.Lamports,
		Data:       info.Data,
		Owner:      info.Owner,
		Executable: info.Executable,
	}
}
