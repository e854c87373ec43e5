// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
)

// Immutable is a read-only key/value store. Missing keys return
// [database.ErrNotFound].
type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Database is a [Mutable] that holds resources until closed.
type Database interface {
	Mutable

	Close() error
}

// Batch collects writes that are applied together by Write.
type Batch interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Write() error
}

// Batcher is a [Mutable] that can apply many writes atomically.
type Batcher interface {
	Mutable

	NewBatch() Batch
}
