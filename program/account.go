// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/ava-labs/counterprogram/codec"
)

// AccountInfo is a handle to one ledger account, borrowed for the duration of
// a single invocation. The host owns it and writes it back (or discards it)
// after the program returns.
type AccountInfo struct {
	Key        codec.Address
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Data       []byte
	Owner      codec.Address
	Executable bool
}

// Clone returns a deep copy of a.
func (a *AccountInfo) Clone() *AccountInfo {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// accountIter binds accounts positionally.
type accountIter struct {
	accounts []*AccountInfo
	next     int
}

func newAccountIter(accounts []*AccountInfo) *accountIter {
	return &accountIter{accounts: accounts}
}

func (it *accountIter) Next() (*AccountInfo, error) {
	if it.next >= len(it.accounts) {
		return nil, fmt.Errorf("%w: need account %d but only %d supplied", ErrNotEnoughAccountKeys, it.next, len(it.accounts))
	}
	a := it.accounts[it.next]
	it.next++
	return a, nil
}
