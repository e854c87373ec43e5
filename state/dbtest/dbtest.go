// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dbtest is a conformance suite for [state.Database] implementations.
package dbtest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/state"
)

// Tests run against a fresh database each.
var Tests = map[string]func(t *testing.T, db state.Database){
	"GetMissing":        TestGetMissing,
	"InsertOverwrite":   TestInsertOverwrite,
	"Remove":            TestRemove,
	"ValuesAreCopied":   TestValuesAreCopied,
	"ViewCommit":        TestViewCommit,
	"ViewRollback":      TestViewRollback,
	"BatchWriteAtomics": TestBatch,
}

// Run runs every test in [Tests] on a database built by [newDB].
func Run(t *testing.T, newDB func(t *testing.T) state.Database) {
	for name, test := range Tests {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			defer func() {
				require.NoError(t, db.Close())
			}()
			test(t, db)
		})
	}
}

func TestGetMissing(t *testing.T, db state.Database) {
	_, err := db.GetValue(context.Background(), []byte("missing"))
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestInsertOverwrite(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("k"), []byte{1}))
	require.NoError(db.Insert(ctx, []byte("k"), []byte{2, 3}))
	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{2, 3}, v)
}

func TestRemove(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("k"), []byte{1}))
	require.NoError(db.Remove(ctx, []byte("k")))
	_, err := db.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	// Removing a missing key is not an error.
	require.NoError(db.Remove(ctx, []byte("k")))
}

func TestValuesAreCopied(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	value := []byte{1, 2}
	require.NoError(db.Insert(ctx, []byte("k"), value))
	value[0] = 9

	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{1, 2}, v)
	v[1] = 9

	v, err = db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{1, 2}, v)
}

func TestViewCommit(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Insert(ctx, []byte("gone"), []byte{1}))
	view := state.NewView(db, state.Keys{
		"new":  state.All,
		"gone": state.All,
	})
	require.NoError(view.Insert(ctx, []byte("new"), []byte{2}))
	require.NoError(view.Remove(ctx, []byte("gone")))

	// Nothing is visible before the commit.
	_, err := db.GetValue(ctx, []byte("new"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(view.Commit(ctx))
	v, err := db.GetValue(ctx, []byte("new"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
	_, err = db.GetValue(ctx, []byte("gone"))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestViewRollback(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	view := state.NewView(db, state.Keys{"k": state.All})
	require.NoError(view.Insert(ctx, []byte("k"), []byte{1}))
	view.Rollback()
	_, err := db.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)
}

// TestBatch is skipped for databases that are not [state.Batcher]s.
func TestBatch(t *testing.T, db state.Database) {
	b, ok := db.(state.Batcher)
	if !ok {
		t.Skip("database does not batch")
	}
	require := require.New(t)
	ctx := context.Background()

	batch := b.NewBatch()
	require.NoError(batch.Put([]byte("a"), []byte{1}))
	require.NoError(batch.Put([]byte("b"), []byte{2}))
	require.NoError(batch.Delete([]byte("a")))
	_, err := db.GetValue(ctx, []byte("b"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(batch.Write())
	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
}
