// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/api/indexer"
	"github.com/ava-labs/counterprogram/config"
	"github.com/ava-labs/counterprogram/pebble"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/storage"
	"github.com/ava-labs/counterprogram/trace"
)

// Handler drives a local ledger: the runtime with the counter program
// registered, the key store kept next to it and the optional indexer.
type Handler struct {
	cfg    config.Config
	log    logging.Logger
	tracer trace.Tracer

	db  *pebble.Database
	rt  *runtime.Runtime
	idx *indexer.Indexer

	gatherer prometheus.Gatherers
}

func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Handler, error) {
	tracer, err := trace.New(&cfg.Trace)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		cfg:    cfg,
		log:    log,
		tracer: tracer,
	}

	var dbRegistry *prometheus.Registry
	h.db, dbRegistry, err = storage.New(cfg.Pebble, cfg.DataDir, storage.LedgerNamespace)
	if err != nil {
		_ = tracer.Close()
		return nil, err
	}
	rt, rtRegistry, err := runtime.New(ctx, log, tracer, h.db, cfg.Rent)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	h.rt = rt
	h.gatherer = prometheus.Gatherers{dbRegistry, rtRegistry}

	if err := rt.Register(program.New(cfg.ProgramID, rt.Allocator(), rt.Rent(), log)); err != nil {
		_ = h.Close()
		return nil, err
	}
	if cfg.Index.Enabled {
		h.idx, err = indexer.New(log, cfg.IndexPath())
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		rt.AddListener(h.idx)
	}
	log.Info("ledger opened",
		zap.String("dataDir", cfg.DataDir),
		zap.Stringer("programID", cfg.ProgramID),
		zap.Uint64("sequence", rt.Sequence()),
		zap.Bool("index", cfg.Index.Enabled),
	)
	return h, nil
}

func (h *Handler) Runtime() *runtime.Runtime {
	return h.rt
}

func (h *Handler) Indexer() *indexer.Indexer {
	return h.idx
}

// Close releases the ledger. It may be called more than once.
func (h *Handler) Close() error {
	errs := wrappers.Errs{}
	if h.idx != nil {
		errs.Add(h.idx.Close())
		h.idx = nil
	}
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			errs.Add(fmt.Errorf("unable to close database: %w", err))
		}
		h.db = nil
	}
	if h.tracer != nil {
		errs.Add(h.tracer.Close())
		h.tracer = nil
	}
	return errs.Err
}
