// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE} -destination=mock_dependencies.go . Allocator,Rent

package program

import (
	"context"

	"github.com/ava-labs/counterprogram/codec"
)

// CreateAccountParams describes one request to create and fund a record.
type CreateAccountParams struct {
	Payer         *AccountInfo
	Account       *AccountInfo
	SystemProgram *AccountInfo

	Lamports uint64
	Space    uint64
	Owner    codec.Address
}

// Allocator creates persistent records. In one step it moves
// [CreateAccountParams.Lamports] from the payer to the new account, sizes the
// account's data to [CreateAccountParams.Space] zero bytes and assigns it to
// [CreateAccountParams.Owner].
type Allocator interface {
	CreateAccount(ctx context.Context, params *CreateAccountParams) error
}

// Rent reports the minimum balance that keeps a record of a given size alive.
type Rent interface {
	MinimumBalance(ctx context.Context, size uint64) (uint64, error)
}
