// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
)

var (
	ErrInvalidKeyOrPermission = errors.New("key is not in scope or does not have required permission")
	ErrViewClosed             = errors.New("view already committed or rolled back")
)

var _ Mutable = (*View)(nil)

type change struct {
	value  []byte
	delete bool
}

// View buffers changes to an underlying [Mutable] restricted to a set of
// [Keys]. Nothing reaches the underlying store until [View.Commit]; a
// [View.Rollback] discards everything.
type View struct {
	db      Mutable
	scope   Keys
	changes map[string]*change
	closed  bool
}

func NewView(db Mutable, scope Keys) *View {
	return &View{
		db:      db,
		scope:   scope,
		changes: make(map[string]*change),
	}
}

func (v *View) check(key []byte, require Permissions) error {
	if v.closed {
		return ErrViewClosed
	}
	if !v.scope[string(key)].Has(require) {
		return fmt.Errorf("%w: %x needs %s", ErrInvalidKeyOrPermission, key, require)
	}
	return nil
}

func (v *View) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := v.check(key, Read); err != nil {
		return nil, err
	}
	if c, ok := v.changes[string(key)]; ok {
		if c.delete {
			return nil, database.ErrNotFound
		}
		return slices.Clone(c.value), nil
	}
	return v.db.GetValue(ctx, key)
}

func (v *View) Insert(_ context.Context, key []byte, value []byte) error {
	if err := v.check(key, Write); err != nil {
		return err
	}
	v.changes[string(key)] = &change{value: slices.Clone(value)}
	return nil
}

func (v *View) Remove(_ context.Context, key []byte) error {
	if err := v.check(key, Write); err != nil {
		return err
	}
	v.changes[string(key)] = &change{delete: true}
	return nil
}

// PendingChanges returns the number of keys that would be written by Commit.
func (v *View) PendingChanges() int {
	return len(v.changes)
}

// Commit applies the buffered changes to the underlying store in key order.
// When the store is a [Batcher] the changes land in one atomic batch.
func (v *View) Commit(ctx context.Context) error {
	if v.closed {
		return ErrViewClosed
	}
	v.closed = true

	keys := maps.Keys(v.changes)
	slices.Sort(keys)
	if b, ok := v.db.(Batcher); ok {
		batch := b.NewBatch()
		for _, k := range keys {
			c := v.changes[k]
			var err error
			if c.delete {
				err = batch.Delete([]byte(k))
			} else {
				err = batch.Put([]byte(k), c.value)
			}
			if err != nil {
				return err
			}
		}
		v.changes = nil
		return batch.Write()
	}
	for _, k := range keys {
		c := v.changes[k]
		var err error
		if c.delete {
			err = v.db.Remove(ctx, []byte(k))
		} else {
			err = v.db.Insert(ctx, []byte(k), c.value)
		}
		if err != nil {
			return err
		}
	}
	v.changes = nil
	return nil
}

// Rollback discards the buffered changes.
func (v *View) Rollback() {
	v.closed = true
	v.changes = nil
}
