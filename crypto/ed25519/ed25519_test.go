// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/crypto"
)

var (
	TestPrivateKey = PrivateKey(
		[PrivateKeyLen]byte{
			32, 241, 118, 222, 210, 13, 164, 128, 3, 18,
			109, 215, 176, 215, 168, 171, 194, 181, 4, 11,
			253, 199, 173, 240, 107, 148, 127, 190, 48, 164,
			12, 48, 115, 50, 124, 153, 59, 53, 196, 150, 168,
			143, 151, 235, 222, 128, 136, 161, 9, 40, 139, 85,
			182, 153, 68, 135, 62, 166, 45, 235, 251, 246, 69, 7,
		},
	)
	TestPublicKey = []byte{
		115, 50, 124, 153, 59, 53, 196, 150, 168, 143, 151, 235,
		222, 128, 136, 161, 9, 40, 139, 85, 182, 153, 68, 135,
		62, 166, 45, 235, 251, 246, 69, 7,
	}
)

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	const numKeysToGenerate int = 10

	m := make(map[PrivateKey]bool)
	for i := 0; i < numKeysToGenerate; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.NotEqual(EmptyPrivateKey, priv)
		require.False(m[priv], "Duplicate PrivateKey generated")
		m[priv] = true
	}
}

func TestPublicKeyAndAddress(t *testing.T) {
	require := require.New(t)
	var expectedPubKey PublicKey
	copy(expectedPubKey[:], TestPublicKey)

	require.Equal(expectedPubKey, TestPrivateKey.PublicKey())
	addr := TestPrivateKey.Address()
	require.Equal(TestPublicKey, addr[:])
}

func TestToPrivateKey(t *testing.T) {
	require := require.New(t)

	priv, err := ToPrivateKey(TestPrivateKey[:])
	require.NoError(err)
	require.Equal(TestPrivateKey, priv)

	_, err = ToPrivateKey(TestPrivateKey[:PrivateKeySeedLen])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)

	tampered := TestPrivateKey
	tampered[PrivateKeyLen-1]++
	_, err = ToPrivateKey(tampered[:])
	require.ErrorIs(err, crypto.ErrInvalidPrivateKey)
}

func TestSignMatchesStdlib(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")
	var expectedSig Signature
	copy(expectedSig[:], ed25519.Sign(TestPrivateKey[:], msg))
	require.Equal(expectedSig, Sign(msg, TestPrivateKey))
}

func TestVerify(t *testing.T) {
	require := require.New(t)
	msg := []byte("msg")
	sig := Sign(msg, TestPrivateKey)

	require.True(Verify(msg, TestPrivateKey.PublicKey(), sig))
	require.False(Verify([]byte("diff msg"), TestPrivateKey.PublicKey(), sig))
}

func TestBatchVerify(t *testing.T) {
	const numItems = 64
	for _, corrupt := range []bool{false, true} {
		require := require.New(t)
		bv := NewBatch(numItems)
		for i := 0; i < numItems; i++ {
			priv, err := GeneratePrivateKey()
			require.NoError(err)
			msg := make([]byte, 128)
			_, err = rand.Read(msg)
			require.NoError(err)
			sig := Sign(msg, priv)
			if corrupt && i == 10 {
				sig[0]++
			}
			bv.Add(msg, priv.PublicKey(), sig)
		}
		if corrupt {
			require.ErrorIs(bv.VerifyAsync()(), crypto.ErrInvalidSignature)
		} else {
			require.NoError(bv.VerifyAsync()())
		}
	}
}
