// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
)

// Typed is implemented by every value selected by a leading type byte.
type Typed interface {
	GetTypeID() uint8
}

// TypeParser maps a leading type byte to the decoder of the matching type.
type TypeParser[T Typed] struct {
	indexToDecoder map[uint8]func(*Packer) (T, error)
}

func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		indexToDecoder: map[uint8]func(*Packer) (T, error){},
	}
}

// Register adds [f] as the decoder for the type id of [instance].
func (p *TypeParser[T]) Register(instance T, f func(*Packer) (T, error)) error {
	id := instance.GetTypeID()
	if _, ok := p.indexToDecoder[id]; ok {
		return fmt.Errorf("%w: type id %d (%T)", ErrDuplicateItem, id, instance)
	}
	p.indexToDecoder[id] = f
	return nil
}

func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	f, ok := p.indexToDecoder[index]
	return f, ok
}

// Unmarshal reads the type byte from [p] and hands the rest of the packer to
// the registered decoder.
func (p *TypeParser[T]) Unmarshal(pk *Packer) (T, error) {
	var empty T
	typeID := pk.UnpackByte()
	if err := pk.Err(); err != nil {
		return empty, err
	}
	f, ok := p.LookupIndex(typeID)
	if !ok {
		return empty, fmt.Errorf("%w: %d", ErrUnknownType, typeID)
	}
	return f(pk)
}
