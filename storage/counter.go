// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/counterprogram/consts"
)

// CounterAccountSize is the exact number of bytes a counter record occupies
// in its account.
const CounterAccountSize = consts.Uint64Len

var ErrInvalidCounterLength = errors.New("invalid counter length")

// CounterAccount is the persistent record held by a counter account: a
// single borsh-encoded u64 (8 little-endian bytes, no header).
type CounterAccount struct {
	Counter uint64
}

// DecodeCounter parses [data] as a CounterAccount. Any length other than
// [CounterAccountSize] is rejected.
func DecodeCounter(data []byte) (*CounterAccount, error) {
	if len(data) != CounterAccountSize {
		return nil, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidCounterLength, CounterAccountSize, len(data))
	}
	c := new(CounterAccount)
	if err := borsh.Deserialize(c, data); err != nil {
		return nil, err
	}
	return c, nil
}

// Bytes returns the serialized form of c.
func (c *CounterAccount) Bytes() ([]byte, error) {
	return borsh.Serialize(*c)
}

// EncodeInto overwrites the first [CounterAccountSize] bytes of [dst] with
// the serialized form of c. Nothing is written if [dst] is too short.
func (c *CounterAccount) EncodeInto(dst []byte) error {
	if len(dst) < CounterAccountSize {
		return fmt.Errorf("%w: destination has %d bytes", ErrInvalidCounterLength, len(dst))
	}
	b, err := c.Bytes()
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}
