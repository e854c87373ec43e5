// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/ava-labs/counterprogram/codec"
)

// initializeAccounts are the accounts bound, in order, by [Initialize].
type initializeAccounts struct {
	record        *AccountInfo
	payer         *AccountInfo
	systemProgram *AccountInfo
}

func bindInitialize(accounts []*AccountInfo) (*initializeAccounts, error) {
	it := newAccountIter(accounts)
	record, err := it.Next()
	if err != nil {
		return nil, err
	}
	payer, err := it.Next()
	if err != nil {
		return nil, err
	}
	systemProgram, err := it.Next()
	if err != nil {
		return nil, err
	}
	return &initializeAccounts{
		record:        record,
		payer:         payer,
		systemProgram: systemProgram,
	}, nil
}

// bindRecord returns the record account for [Increment] and [Decrement] and
// checks that it is owned by [programID].
//
// Signatures are deliberately not checked here. Ownership is the only gate:
// anyone naming a record owned by this program may step it.
func bindRecord(programID codec.Address, accounts []*AccountInfo) (*AccountInfo, error) {
	record, err := newAccountIter(accounts).Next()
	if err != nil {
		return nil, err
	}
	if record.Owner != programID {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrIncorrectProgramID, record.Key, record.Owner)
	}
	return record, nil
}
