// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/consts"
)

func TestCounterRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 42, 1 << 32, consts.MaxUint64 - 1, consts.MaxUint64}
	r := rand.New(rand.NewSource(1)) //nolint:gosec
	for i := 0; i < 256; i++ {
		values = append(values, r.Uint64())
	}

	for _, v := range values {
		require := require.New(t)
		buf := make([]byte, CounterAccountSize)
		require.NoError((&CounterAccount{Counter: v}).EncodeInto(buf))

		decoded, err := DecodeCounter(buf)
		require.NoError(err)
		require.Equal(v, decoded.Counter)
	}
}

func TestCounterWireFormat(t *testing.T) {
	require := require.New(t)
	b, err := (&CounterAccount{Counter: 0x0102030405060708}).Bytes()
	require.NoError(err)
	require.Equal([]byte{8, 7, 6, 5, 4, 3, 2, 1}, b)
	require.Equal(uint64(0x0102030405060708), binary.LittleEndian.Uint64(b))
}

func TestDecodeCounterLength(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: make([]byte, CounterAccountSize-1)},
		{name: "long", data: make([]byte, CounterAccountSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCounter(tt.data)
			require.ErrorIs(t, err, ErrInvalidCounterLength)
		})
	}
}

func TestDecodeZeroFilled(t *testing.T) {
	require := require.New(t)
	c, err := DecodeCounter(make([]byte, CounterAccountSize))
	require.NoError(err)
	require.Zero(c.Counter)
}

func TestEncodeIntoShortBuffer(t *testing.T) {
	require := require.New(t)
	buf := []byte{9, 9, 9}
	err := (&CounterAccount{Counter: 1}).EncodeInto(buf)
	require.ErrorIs(err, ErrInvalidCounterLength)
	require.Equal([]byte{9, 9, 9}, buf)
}

func TestEncodeIntoOverwritesPrefixOnly(t *testing.T) {
	require := require.New(t)
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xee}
	require.NoError((&CounterAccount{Counter: 3}).EncodeInto(buf))
	require.Equal([]byte{3, 0, 0, 0, 0, 0, 0, 0, 0xee}, buf)
}
