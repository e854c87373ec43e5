// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/counterprogram/state"
	"github.com/ava-labs/counterprogram/state/dbtest"
)

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func TestDatabase(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)
	require.NotNil(registry)

	_, err = db.GetValue(ctx, []byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Insert(ctx, []byte("k"), []byte("v")))
	v, err := db.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)

	require.NoError(db.Remove(ctx, []byte("k")))
	_, err = db.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	batch := db.NewBatch()
	require.NoError(batch.Put([]byte("a"), []byte{1}))
	require.NoError(batch.Put([]byte("b"), []byte{2}))
	require.NoError(batch.Write())

	families, err := registry.Gather()
	require.NoError(err)
	names := make(map[string]struct{}, len(families))
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}
	require.Contains(names, "pebble_batch_ops")
	require.Contains(names, "pebble_disk_space_usage")

	require.NoError(db.Close())
	require.ErrorIs(db.Close(), database.ErrClosed)

	// Scrapes after close report zero instead of touching the closed db.
	_, err = registry.Gather()
	require.NoError(err)
}

func TestConformance(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) state.Database {
		cfg := NewDefaultConfig()
		cfg.Sync = false
		db, _, err := New(t.TempDir(), cfg)
		require.NoError(t, err)
		return db
	})
}

func TestDatabaseReopen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	db, _, err := New(dir, NewDefaultConfig())
	require.NoError(err)
	batch := db.NewBatch()
	require.NoError(batch.Put([]byte("a"), []byte{1}))
	require.NoError(batch.Put([]byte("b"), []byte{2}))
	require.NoError(batch.Delete([]byte("a")))
	require.NoError(batch.Write())
	require.NoError(db.Close())

	db, _, err = New(dir, NewDefaultConfig())
	require.NoError(err)
	defer func() {
		require.NoError(db.Close())
	}()
	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
}

func TestDatabaseAsViewBackend(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db, _, err := New(t.TempDir(), NewDefaultConfig())
	require.NoError(err)
	defer func() {
		require.NoError(db.Close())
	}()

	view := state.NewView(db, state.Keys{"x": state.Write})
	require.NoError(view.Insert(ctx, []byte("x"), []byte{7}))
	_, err = db.GetValue(ctx, []byte("x"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(view.Commit(ctx))
	v, err := db.GetValue(ctx, []byte("x"))
	require.NoError(err)
	require.Equal([]byte{7}, v)
}

func BenchmarkBatchInsertion(b *testing.B) {
	const batchSize = 100_000
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(b.TempDir(), cfg)
			if err != nil {
				b.Fatal(err)
			}

			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j := 0; j < batchSize; j++ {
					if err := batch.Put(keys[j], randBytes()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
