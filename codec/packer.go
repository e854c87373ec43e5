// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/counterprogram/consts"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego/utils/wrappers/packing.go. A bool [required] parameter is
// added to many unpacking methods, which signals the packer to add an error
// if the expected method does not unpack properly.
//
// Integers are little-endian: the instruction and record wire formats are
// shared with clients that encode in that order.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the initial byte length of [src]
// and a MaxSize of [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

// NewWriter returns a Packer instance with an initial size of [initial] and a
// MaxSize set to [limit].
func NewWriter(initial, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{MaxSize: limit, Bytes: make([]byte, 0, initial)},
	}
}

// Bytes returns the bytes that have been packed so far.
func (p *Packer) Bytes() []byte {
	return p.p.Bytes[:p.p.Offset]
}

func (p *Packer) Offset() int {
	return p.p.Offset
}

// Remaining returns the number of unread bytes.
func (p *Packer) Remaining() int {
	return len(p.p.Bytes) - p.p.Offset
}

// Empty returns true if every byte has been consumed.
func (p *Packer) Empty() bool {
	return p.p.Offset == len(p.p.Bytes)
}

func (p *Packer) Err() error {
	return p.p.Err
}

func (p *Packer) addErr(err error) {
	if p.p.Err == nil {
		p.p.Err = err
	}
}

func (p *Packer) PackByte(b byte) {
	p.p.PackByte(b)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackBool(b bool) {
	p.p.PackBool(b)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackFixedBytes(binary.LittleEndian.AppendUint64(nil, v))
}

// UnpackUint64 reads eight little-endian bytes. If [required] is set a zero
// value adds [ErrFieldNotPopulated].
func (p *Packer) UnpackUint64(required bool) uint64 {
	if p.Remaining() < consts.Uint64Len {
		p.addErr(ErrInsufficientLength)
		return 0
	}
	b := p.p.UnpackFixedBytes(consts.Uint64Len)
	if p.p.Errored() {
		return 0
	}
	v := binary.LittleEndian.Uint64(b)
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}

func (p *Packer) PackAddress(a Address) {
	p.p.PackFixedBytes(a[:])
}

// UnpackAddress unpacks an Address into [dest]. If [required] is set an
// empty address adds [ErrFieldNotPopulated].
func (p *Packer) UnpackAddress(required bool, dest *Address) {
	if p.Remaining() < AddressLen {
		p.addErr(ErrInsufficientLength)
		return
	}
	copy((*dest)[:], p.p.UnpackFixedBytes(AddressLen))
	if required && *dest == EmptyAddress {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	if p.Remaining() < size {
		p.addErr(ErrInsufficientLength)
		return
	}
	*dest = p.p.UnpackFixedBytes(size)
}

// PackBytes packs a length-prefixed byte slice.
func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

// UnpackBytes unpacks a length-prefixed byte slice into [dest] and enforces
// a maximum size of [limit] when it is non-negative.
func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	if limit >= 0 {
		*dest = p.p.UnpackLimitedBytes(uint32(limit))
	} else {
		*dest = p.p.UnpackBytes()
	}
	if required && len(*dest) == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackInt(v uint32) {
	p.p.PackInt(v)
}

func (p *Packer) UnpackInt(required bool) uint32 {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}
