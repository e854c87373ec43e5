// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/consts"
)

const (
	InitializeID uint8 = 0
	IncrementID  uint8 = 1
	DecrementID  uint8 = 2
)

// Instruction is one of the commands understood by the counter program. The
// set is closed: [Initialize], [Increment] and [Decrement].
type Instruction interface {
	GetTypeID() uint8
	// Name is used by logs and the indexer.
	Name() string
	// Size is the number of payload bytes following the discriminant.
	Size() int
	Marshal(p *codec.Packer)
}

var (
	_ Instruction = (*Initialize)(nil)
	_ Instruction = (*Increment)(nil)
	_ Instruction = (*Decrement)(nil)
)

type Initialize struct {
	InitialValue uint64 `json:"initialValue"`
}

func (*Initialize) GetTypeID() uint8 { return InitializeID }

func (*Initialize) Name() string { return "initialize" }

func (*Initialize) Size() int { return consts.Uint64Len }

func (i *Initialize) Marshal(p *codec.Packer) {
	p.PackUint64(i.InitialValue)
}

func UnmarshalInitialize(p *codec.Packer) (Instruction, error) {
	var i Initialize
	i.InitialValue = p.UnpackUint64(false)
	return &i, p.Err()
}

type Increment struct{}

func (*Increment) GetTypeID() uint8 { return IncrementID }

func (*Increment) Name() string { return "increment" }

func (*Increment) Size() int { return 0 }

func (*Increment) Marshal(*codec.Packer) {}

func UnmarshalIncrement(*codec.Packer) (Instruction, error) {
	return &Increment{}, nil
}

type Decrement struct{}

func (*Decrement) GetTypeID() uint8 { return DecrementID }

func (*Decrement) Name() string { return "decrement" }

func (*Decrement) Size() int { return 0 }

func (*Decrement) Marshal(*codec.Packer) {}

func UnmarshalDecrement(*codec.Packer) (Instruction, error) {
	return &Decrement{}, nil
}

var parser = newParser()

func newParser() *codec.TypeParser[Instruction] {
	p := codec.NewTypeParser[Instruction]()
	for _, r := range []struct {
		instance Instruction
		f        func(*codec.Packer) (Instruction, error)
	}{
		{&Initialize{}, UnmarshalInitialize},
		{&Increment{}, UnmarshalIncrement},
		{&Decrement{}, UnmarshalDecrement},
	} {
		if err := p.Register(r.instance, r.f); err != nil {
			panic(err)
		}
	}
	return p
}

// Marshal returns the wire form of [i]: the discriminant byte followed by
// the little-endian payload.
func Marshal(i Instruction) []byte {
	p := codec.NewWriter(consts.ByteLen+i.Size(), consts.ByteLen+i.Size())
	p.PackByte(i.GetTypeID())
	i.Marshal(p)
	return p.Bytes()
}

// Unpack decodes [data] into an [Instruction]. Every failure is reported as
// [ErrInvalidInstructionData].
//
// Bytes following a complete payload are ignored. Clients in the wild pad
// instruction buffers, so this must stay permissive.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction", ErrInvalidInstructionData)
	}
	p := codec.NewReader(data, len(data))
	i, err := parser.Unmarshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return i, nil
}
