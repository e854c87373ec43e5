// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/program"
	"github.com/ava-labs/counterprogram/state"
	"github.com/ava-labs/counterprogram/trace"

	goruntime "runtime"

	smath "github.com/ava-labs/avalanchego/utils/math"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Program is an on-ledger program the runtime can dispatch instructions to.
type Program interface {
	ProgramID() codec.Address
	Process(ctx context.Context, accounts []*program.AccountInfo, data []byte) error
	InstructionName(data []byte) string
}

// Runtime hosts programs over a ledger stored in a [state.Mutable]. It
// processes one transaction at a time and applies each one all-or-nothing.
type Runtime struct {
	log     logging.Logger
	tracer  trace.Tracer
	db      state.Mutable
	rent    Rent
	system  *SystemProgram
	metrics *metrics

	l         sync.Mutex
	programs  map[codec.Address]Program
	listeners []Listener
	sequence  *atomic.Uint64
}

func New(ctx context.Context, log logging.Logger, tracer trace.Tracer, db state.Mutable, rent Rent) (*Runtime, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	seq, err := loadSequence(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	system := NewSystemProgram(log)
	rt := &Runtime{
		log:      log,
		tracer:   tracer,
		db:       db,
		rent:     rent,
		system:   system,
		metrics:  metrics,
		programs: map[codec.Address]Program{SystemProgramID: system},
		sequence: atomic.NewUint64(seq),
	}
	return rt, registry, nil
}

func loadSequence(ctx context.Context, db state.Immutable) (uint64, error) {
	b, err := db.GetValue(ctx, sequenceKey())
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: sequence has %d bytes", ErrInvalidAccountRecord, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// Allocator returns the allocator programs use to create accounts.
func (r *Runtime) Allocator() program.Allocator {
	return &allocator{system: r.system}
}

func (r *Runtime) Rent() Rent {
	return r.rent
}

// Register makes [p] callable by transactions.
func (r *Runtime) Register(p Program) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.programs[p.ProgramID()]; ok {
		return fmt.Errorf("%w: program %s", codec.ErrDuplicateItem, p.ProgramID())
	}
	r.programs[p.ProgramID()] = p
	return nil
}

func (r *Runtime) AddListener(l Listener) {
	r.l.Lock()
	defer r.l.Unlock()

	r.listeners = append(r.listeners, l)
}

// Sequence returns the number of transactions processed so far.
func (r *Runtime) Sequence() uint64 {
	return r.sequence.Load()
}

func (r *Runtime) GetAccount(ctx context.Context, addr codec.Address) (*Account, error) {
	r.l.Lock()
	defer r.l.Unlock()

	return GetAccount(ctx, r.db, addr)
}

// GetTransaction returns the stored result of [txID].
func (r *Runtime) GetTransaction(ctx context.Context, txID ids.ID) (*Result, error) {
	r.l.Lock()
	defer r.l.Unlock()

	b, err := r.db.GetValue(ctx, resultKey(txID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, txID)
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalResult(b)
}

// Airdrop credits [lamports] to [addr] and returns the new balance.
func (r *Runtime) Airdrop(ctx context.Context, addr codec.Address, lamports uint64) (uint64, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.Airdrop")
	defer span.End()

	r.l.Lock()
	defer r.l.Unlock()

	acct, err := GetAccount(ctx, r.db, addr)
	if err != nil {
		return 0, err
	}
	balance, err := smath.Add(acct.Lamports, lamports)
	if err != nil {
		return 0, err
	}
	acct.Lamports = balance
	if err := PutAccount(ctx, r.db, addr, acct); err != nil {
		return 0, err
	}
	r.metrics.airdrops.Inc()
	r.metrics.airdroppedAmounts.Add(float64(lamports))
	r.log.Info("airdrop",
		zap.Stringer("address", addr),
		zap.Uint64("lamports", lamports),
		zap.Uint64("balance", balance),
	)
	return balance, nil
}

// ProcessTransaction verifies and executes [tx]. A returned error means the
// transaction could not be processed at all (bad signatures, storage
// failure). Program failures are reported in the [Result].
func (r *Runtime) ProcessTransaction(ctx context.Context, tx *Transaction) (*Result, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	r.l.Lock()
	defer r.l.Unlock()

	return r.process(ctx, tx)
}

// ProcessBatch verifies the signatures of [txs] in parallel and then
// executes them in order. The first verification failure rejects the whole
// batch before anything is executed.
func (r *Runtime) ProcessBatch(ctx context.Context, txs []*Transaction) ([]*Result, error) {
	start := time.Now()
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(goruntime.NumCPU())
	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			if err := tx.Verify(); err != nil {
				return fmt.Errorf("%w: tx %s", err, tx.ID())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.metrics.waitSignature.Observe(time.Since(start).Seconds())

	r.l.Lock()
	defer r.l.Unlock()

	results := make([]*Result, 0, len(txs))
	for _, tx := range txs {
		result, err := r.process(ctx, tx)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runtime) process(ctx context.Context, tx *Transaction) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.ProcessTransaction", oteltrace.WithAttributes(
		attribute.Stringer("txID", tx.ID()),
		attribute.Int("instructions", len(tx.Instructions)),
	))
	defer span.End()
	start := time.Now()

	if tx.ID() == ids.Empty {
		return nil, fmt.Errorf("%w: unsigned", ErrInvalidTransaction)
	}
	if _, err := r.db.GetValue(ctx, resultKey(tx.ID())); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ID())
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	ic, scope, err := r.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	result := &Result{
		TxID:      tx.ID(),
		Sequence:  r.sequence.Load() + 1,
		Timestamp: time.Now().UnixMilli(),
		Accounts:  ic.order,
	}
	for _, i := range tx.Instructions {
		result.ProgramIDs = append(result.ProgramIDs, i.ProgramID)
		name := "unknown"
		if p, ok := r.programs[i.ProgramID]; ok {
			name = p.InstructionName(i.Data)
		}
		result.Instructions = append(result.Instructions, name)
	}

	execErr := r.execute(ctx, ic, tx)
	view := state.NewView(r.db, scope)
	if execErr == nil {
		for _, addr := range ic.order {
			info := ic.accounts[addr]
			if !info.IsWritable {
				continue
			}
			if err := PutAccount(ctx, view, addr, fromAccountInfo(info)); err != nil {
				return nil, err
			}
		}
		result.Success = true
		result.Kind = program.KindNone.String()
	} else {
		result.Kind = ErrorKind(execErr)
		result.Error = execErr.Error()
	}

	seq := binary.BigEndian.AppendUint64(nil, result.Sequence)
	if err := view.Insert(ctx, sequenceKey(), seq); err != nil {
		return nil, err
	}
	if err := view.Insert(ctx, resultKey(tx.ID()), result.Bytes()); err != nil {
		return nil, err
	}
	if err := view.Commit(ctx); err != nil {
		return nil, err
	}
	r.sequence.Store(result.Sequence)

	r.metrics.txsProcessed.WithLabelValues(result.Kind).Inc()
	r.metrics.txLatency.Observe(time.Since(start).Seconds())
	if result.Success {
		r.log.Info("transaction accepted",
			zap.Stringer("txID", tx.ID()),
			zap.Uint64("sequence", result.Sequence),
			zap.Strings("instructions", result.Instructions),
		)
	} else {
		r.log.Info("transaction failed",
			zap.Stringer("txID", tx.ID()),
			zap.Uint64("sequence", result.Sequence),
			zap.String("kind", result.Kind),
			zap.Error(execErr),
		)
	}
	for _, l := range r.listeners {
		l.Accepted(ctx, tx, result)
	}
	return result, nil
}

// load reads every account referenced by [tx] into one handle per address.
func (r *Runtime) load(ctx context.Context, tx *Transaction) (*invokeContext, state.Keys, error) {
	signers := tx.Signers()
	ic := newInvokeContext()
	scope := state.Keys{}
	scope.Add(string(sequenceKey()), state.Write)
	scope.Add(string(resultKey(tx.ID())), state.Write)

	for _, i := range tx.Instructions {
		for _, meta := range i.Accounts {
			if info, ok := ic.accounts[meta.Address]; ok {
				if meta.IsWritable && !info.Executable {
					info.IsWritable = true
					ic.pre[meta.Address].IsWritable = true
				}
				continue
			}
			acct, err := GetAccount(ctx, r.db, meta.Address)
			if err != nil {
				return nil, nil, err
			}
			info := toAccountInfo(meta.Address, acct)
			_, info.IsSigner = signers[meta.Address]
			info.IsWritable = meta.IsWritable
			if _, ok := r.programs[meta.Address]; ok {
				info.Executable = true
				info.IsWritable = false
			}
			ic.add(info)
		}
	}
	for addr, info := range ic.accounts {
		perm := state.Read
		if info.IsWritable {
			perm = state.Write
		}
		scope.Add(string(AccountKey(addr)), perm)
	}
	return ic, scope, nil
}

func (r *Runtime) execute(ctx context.Context, ic *invokeContext, tx *Transaction) error {
	ctx = context.WithValue(ctx, invokeContextKey{}, ic)
	for idx, i := range tx.Instructions {
		p, ok := r.programs[i.ProgramID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProgram, i.ProgramID)
		}
		accounts := make([]*program.AccountInfo, 0, len(i.Accounts))
		for _, meta := range i.Accounts {
			accounts = append(accounts, ic.accounts[meta.Address])
		}
		if err := ic.invoke(i.ProgramID, func() error {
			return p.Process(ctx, accounts, i.Data)
		}); err != nil {
			return fmt.Errorf("instruction %d: %w", idx, err)
		}
		r.metrics.instructions.WithLabelValues(p.InstructionName(i.Data)).Inc()
	}

	for _, addr := range ic.order {
		info := ic.accounts[addr]
		if len(info.Data) == 0 || !ic.changed(addr) {
			continue
		}
		if !r.rent.IsExempt(ctx, info.Lamports, uint64(len(info.Data))) {
			return fmt.Errorf("%w: %s", ErrInsufficientFundsRent, addr)
		}
	}
	return nil
}

// Accounts returns the stored state of [addrs].
func (r *Runtime) Accounts(ctx context.Context, addrs ...codec.Address) ([]*Account, error) {
	r.l.Lock()
	defer r.l.Unlock()

	accounts := make([]*Account, 0, len(addrs))
	for _, addr := range addrs {
		acct, err := GetAccount(ctx, r.db, addr)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
