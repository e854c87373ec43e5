// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/counterprogram/state"
)

var (
	_ state.Database = (*Database)(nil)
	_ state.Batcher  = (*Database)(nil)
)

type Config struct {
	CacheSize                   int    `yaml:"cacheSize"`
	BytesPerSync                int    `yaml:"bytesPerSync"`
	WALBytesPerSync             int    `yaml:"walBytesPerSync"`
	MemTableStopWritesThreshold int    `yaml:"memTableStopWritesThreshold"`
	MemTableSize                uint64 `yaml:"memTableSize"`
	MaxOpenFiles                int    `yaml:"maxOpenFiles"`
	ConcurrentCompactions       int    `yaml:"concurrentCompactions"`
	Sync                        bool   `yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   32 * 1024 * 1024,
		BytesPerSync:                1024 * 1024,
		WALBytesPerSync:             1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * 1024 * 1024,
		MaxOpenFiles:                512,
		ConcurrentCompactions:       runtime.NumCPU(),
		Sync:                        true,
	}
}

// Database is a [state.Database] backed by pebble.
type Database struct {
	// l guards db against metric scrapes racing Close.
	l       sync.RWMutex
	db      *pebble.DB
	metrics *metrics
	sync    bool
}

// New opens (or creates) a pebble database in [file]. The returned registry
// holds the database metrics and should be registered by the caller.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	d := &Database{sync: cfg.Sync}
	registry, metrics, err := newMetrics(d)
	if err != nil {
		return nil, nil, err
	}
	d.metrics = metrics
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                cfg.MemTableSize,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int {
			return cfg.ConcurrentCompactions
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1 // explicitly disable seek compaction
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.l.Lock()
	d.db = db
	d.l.Unlock()
	return d, registry, nil
}

func (db *Database) writeOptions() *pebble.WriteOptions {
	if db.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		db.metrics.getLatency.Observe(time.Since(start).Seconds())
	}()

	data, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return slices.Clone(data), nil
}

func (db *Database) Insert(_ context.Context, key []byte, value []byte) error {
	return db.db.Set(key, value, db.writeOptions())
}

func (db *Database) Remove(_ context.Context, key []byte) error {
	return db.db.Delete(key, db.writeOptions())
}

// NewBatch returns a [Batch] that writes atomically on [Batch.Write].
func (db *Database) NewBatch() state.Batch {
	return &Batch{db: db, batch: db.db.NewBatch()}
}

func (db *Database) Close() error {
	db.l.Lock()
	defer db.l.Unlock()

	if db.db == nil {
		return database.ErrClosed
	}
	err := db.db.Close()
	db.db = nil
	return err
}

// Batch collects writes so they are applied to the database together.
type Batch struct {
	db    *Database
	batch *pebble.Batch
}

func (b *Batch) Put(key []byte, value []byte) error {
	return b.batch.Set(key, value, nil)
}

func (b *Batch) Delete(key []byte) error {
	return b.batch.Delete(key, nil)
}

func (b *Batch) Write() error {
	start := time.Now()
	defer func() {
		b.db.metrics.batchLatency.Observe(time.Since(start).Seconds())
	}()
	b.db.metrics.batchOps.Observe(float64(b.batch.Count()))
	return b.batch.Commit(b.db.writeOptions())
}
