// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	k, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return k
}

func TestTransactionSignAndParse(t *testing.T) {
	require := require.New(t)
	payer, counter := testKey(t), testKey(t)

	tx := NewTx(7, &Instruction{
		ProgramID: codec.Address{1},
		Accounts: []*AccountMeta{
			NewAccountMeta(counter.Address(), true),
			NewAccountMeta(payer.Address(), true),
			NewReadonlyAccountMeta(SystemProgramID, false),
		},
		Data: []byte{0, 42, 0, 0, 0, 0, 0, 0, 0},
	})
	_, err := tx.Sign(payer, counter)
	require.NoError(err)
	require.NotEqual(ids.Empty, tx.ID())
	require.NoError(tx.Verify())

	parsed, err := UnmarshalTx(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Nonce, parsed.Nonce)
	require.Equal(tx.Instructions, parsed.Instructions)
	require.Equal(tx.Signatures, parsed.Signatures)
	require.NoError(parsed.Verify())

	// Nonces separate otherwise identical transactions.
	other, err := NewTx(8, tx.Instructions...).Sign(payer, counter)
	require.NoError(err)
	require.NotEqual(tx.ID(), other.ID())
}

func TestTransactionVerify(t *testing.T) {
	payer, other := testKey(t), testKey(t)
	instruction := &Instruction{
		ProgramID: SystemProgramID,
		Accounts:  []*AccountMeta{NewAccountMeta(payer.Address(), true)},
		Data:      TransferData(1),
	}

	tests := []struct {
		name        string
		sign        func() *Transaction
		expectedErr error
	}{
		{
			name: "valid",
			sign: func() *Transaction {
				tx, err := NewTx(1, instruction).Sign(payer)
				require.NoError(t, err)
				return tx
			},
		},
		{
			name: "missing signer",
			sign: func() *Transaction {
				tx, err := NewTx(1, instruction).Sign(other)
				require.NoError(t, err)
				return tx
			},
			expectedErr: ErrMissingRequiredSignature,
		},
		{
			name: "duplicate signer",
			sign: func() *Transaction {
				tx, err := NewTx(1, instruction).Sign(payer, payer)
				require.NoError(t, err)
				return tx
			},
			expectedErr: ErrDuplicateSigner,
		},
		{
			name: "tampered signature",
			sign: func() *Transaction {
				tx, err := NewTx(1, instruction).Sign(payer)
				require.NoError(t, err)
				tx.Signatures[0].Signature[0] ^= 0xff
				return tx
			},
			expectedErr: ErrInvalidSignature,
		},
		{
			name: "signature over other message",
			sign: func() *Transaction {
				tx, err := NewTx(1, instruction).Sign(payer)
				require.NoError(t, err)
				forged, err := NewTx(2, instruction).Sign(other)
				require.NoError(t, err)
				forged.Signatures = tx.Signatures
				return forged
			},
			expectedErr: ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.sign().Verify(), tt.expectedErr)
		})
	}
}

func TestTransactionLimits(t *testing.T) {
	require := require.New(t)
	key := testKey(t)

	_, err := NewTx(1).Sign(key)
	require.ErrorIs(err, ErrNoInstructions)

	instructions := make([]*Instruction, MaxInstructions+1)
	for i := range instructions {
		instructions[i] = &Instruction{ProgramID: SystemProgramID}
	}
	_, err = NewTx(1, instructions...).Sign(key)
	require.ErrorIs(err, ErrTooManyInstructions)

	_, err = UnmarshalTx([]byte{1, 2, 3})
	require.Error(err)
}

func TestResultBytes(t *testing.T) {
	require := require.New(t)
	r := &Result{
		TxID:         ids.GenerateTestID(),
		Sequence:     3,
		Timestamp:    1_700_000_000_000,
		Success:      false,
		Kind:         "InvalidAccountData",
		Error:        "instruction 0: invalid account data",
		ProgramIDs:   []codec.Address{{1}, SystemProgramID},
		Instructions: []string{"increment", "transfer"},
		Accounts:     []codec.Address{{2}, {3}},
	}
	parsed, err := UnmarshalResult(r.Bytes())
	require.NoError(err)
	require.Equal(r, parsed)
}
