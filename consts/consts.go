// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen         = 1
	BoolLen         = 1
	IntLen          = 4
	Uint32Len       = 4
	Uint64Len       = 8
	IDLen           = 32
	MaxUint8        = ^uint8(0)
	MaxUint16       = ^uint16(0)
	MaxUint32       = ^uint32(0)
	MaxUint64       = ^uint64(0)
	MaxUint         = ^uint(0)
	MaxInt          = int(MaxUint >> 1)
	MaxUint64Offset = 63

	// LamportsPerToken is the number of base units in one whole token.
	LamportsPerToken = 1_000_000_000
)
