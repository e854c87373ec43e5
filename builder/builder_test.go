// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/runtime"
)

func TestInitialize(t *testing.T) {
	require := require.New(t)
	programID, counter, payer := codec.Address{1}, codec.Address{2}, codec.Address{3}

	i := Initialize(programID, counter, payer, 42)
	require.Equal(programID, i.ProgramID)
	require.Equal([]byte{0, 42, 0, 0, 0, 0, 0, 0, 0}, i.Data)
	require.Equal([]*runtime.AccountMeta{
		{Address: counter, IsSigner: true, IsWritable: true},
		{Address: payer, IsSigner: true, IsWritable: true},
		{Address: runtime.SystemProgramID},
	}, i.Accounts)
}

func TestStep(t *testing.T) {
	require := require.New(t)
	programID, counter := codec.Address{1}, codec.Address{2}

	inc := Increment(programID, counter)
	require.Equal([]byte{program.IncrementID}, inc.Data)
	require.Len(inc.Accounts, 1)
	require.True(inc.Accounts[0].IsWritable)
	require.False(inc.Accounts[0].IsSigner)

	dec := Decrement(programID, counter)
	require.Equal([]byte{program.DecrementID}, dec.Data)
}

func TestSign(t *testing.T) {
	require := require.New(t)
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)

	tx, err := Sign([]ed25519.PrivateKey{priv}, Transfer(priv.Address(), codec.Address{9}, 10))
	require.NoError(err)
	require.NoError(tx.Verify())

	parsed, err := runtime.UnmarshalTx(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.NoError(parsed.Verify())
}
