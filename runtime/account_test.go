// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
	"github.com/ava-labs/counterprogram/state"
)

func TestAccountBytes(t *testing.T) {
	require := require.New(t)
	a := &Account{
		Lamports:   946_560,
		Data:       []byte{42, 0, 0, 0, 0, 0, 0, 0},
		Owner:      codec.Address{7},
		Executable: true,
	}
	b := a.Bytes()
	require.Len(b, a.Size())

	parsed, err := UnmarshalAccount(b)
	require.NoError(err)
	require.Equal(a, parsed)

	_, err = UnmarshalAccount(b[:len(b)-1])
	require.ErrorIs(err, ErrInvalidAccountRecord)
	_, err = UnmarshalAccount(append(b, 0))
	require.ErrorIs(err, ErrInvalidAccountRecord)
}

func TestGetPutAccount(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := state.NewInMemoryStore()
	addr := codec.Address{1}

	a, err := GetAccount(ctx, db, addr)
	require.NoError(err)
	require.True(a.Empty())
	require.Equal(SystemProgramID, a.Owner)

	a.Lamports = consts.LamportsPerToken
	require.NoError(PutAccount(ctx, db, addr, a))
	got, err := GetAccount(ctx, db, addr)
	require.NoError(err)
	require.Equal(uint64(consts.LamportsPerToken), got.Lamports)

	// Draining an account removes it.
	got.Lamports = 0
	require.NoError(PutAccount(ctx, db, addr, got))
	_, err = db.GetValue(ctx, AccountKey(addr))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestRent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	rent := DefaultRent()

	minimum, err := rent.MinimumBalance(ctx, 8)
	require.NoError(err)
	require.Equal(uint64(946_560), minimum)

	minimum, err = rent.MinimumBalance(ctx, 0)
	require.NoError(err)
	require.Equal(uint64(890_880), minimum)

	require.True(rent.IsExempt(ctx, 946_560, 8))
	require.False(rent.IsExempt(ctx, 946_559, 8))

	_, err = rent.MinimumBalance(ctx, consts.MaxUint64)
	require.Error(err)
}
