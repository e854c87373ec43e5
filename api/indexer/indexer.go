// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/runtime"
)

const (
	// MemoryPath opens an index that lives only as long as the process.
	MemoryPath = ":memory:"

	DefaultLimit = 100
	MaxLimit     = 1_000
)

var (
	ErrTxNotFound = errors.New("tx not found")

	_ runtime.Listener = (*Indexer)(nil)
)

type transactionRow struct {
	gorm.Model
	TxID         string `gorm:"column:tx_id;not null;unique;index;size:66"`
	Sequence     uint64 `gorm:"column:sequence;not null;index"`
	Timestamp    int64  `gorm:"column:tx_time;not null"`
	ProgramID    string `gorm:"column:program_id;not null;index;size:66"`
	Instructions string `gorm:"column:instructions;not null"`
	Account      string `gorm:"column:first_account;not null;index;size:66"`
	Success      bool   `gorm:"column:success;not null"`
	Kind         string `gorm:"column:error_kind;not null;size:32"`
	Error        string `gorm:"column:error_text"`
	TxBytes      []byte `gorm:"column:tx_bytes;type:blob"`
}

func (transactionRow) TableName() string {
	return "transactions"
}

// accountRow links every account a transaction referenced back to it.
type accountRow struct {
	gorm.Model
	TxID     string `gorm:"column:tx_id;not null;index;size:66"`
	Sequence uint64 `gorm:"column:sequence;not null;index"`
	Address  string `gorm:"column:address;not null;index;size:66"`
}

func (accountRow) TableName() string {
	return "transaction_accounts"
}

// Entry is one indexed transaction.
type Entry struct {
	TxID         ids.ID        `json:"txId"`
	Sequence     uint64        `json:"sequence"`
	Timestamp    int64         `json:"timestamp"`
	ProgramID    codec.Address `json:"programId"`
	Instructions []string      `json:"instructions"`
	Account      codec.Address `json:"account"`
	Success      bool          `json:"success"`
	Kind         string        `json:"kind"`
	Error        string        `json:"error,omitempty"`
	TxBytes      []byte        `json:"transactionBytes"`
}

// Indexer keeps a queryable log of processed transactions in sqlite.
type Indexer struct {
	log logging.Logger
	db  *gorm.DB
}

func New(log logging.Logger, path string) (*Indexer, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers and every ":memory:" connection is a
	// separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&transactionRow{}, &accountRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate index: %w", err)
	}
	return &Indexer{log: log, db: db}, nil
}

// Accepted records [result]. Index failures are logged and never affect the
// ledger.
func (i *Indexer) Accepted(ctx context.Context, tx *runtime.Transaction, result *runtime.Result) {
	if err := i.insert(ctx, tx, result); err != nil {
		i.log.Warn("failed to index transaction",
			zap.Stringer("txID", result.TxID),
			zap.Error(err),
		)
	}
}

func (i *Indexer) insert(ctx context.Context, tx *runtime.Transaction, result *runtime.Result) error {
	row := transactionRow{
		TxID:         result.TxID.String(),
		Sequence:     result.Sequence,
		Timestamp:    result.Timestamp,
		Instructions: strings.Join(result.Instructions, ","),
		Success:      result.Success,
		Kind:         result.Kind,
		Error:        result.Error,
		TxBytes:      tx.Bytes(),
	}
	if len(result.ProgramIDs) > 0 {
		row.ProgramID = result.ProgramIDs[0].String()
	}
	if len(result.Accounts) > 0 {
		row.Account = result.Accounts[0].String()
	}
	return i.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		if len(result.Accounts) == 0 {
			return nil
		}
		accounts := make([]accountRow, 0, len(result.Accounts))
		for _, addr := range result.Accounts {
			accounts = append(accounts, accountRow{
				TxID:     row.TxID,
				Sequence: row.Sequence,
				Address:  addr.String(),
			})
		}
		return db.Create(&accounts).Error
	})
}

func (i *Indexer) GetTransaction(ctx context.Context, txID ids.ID) (*Entry, bool, error) {
	var row transactionRow
	err := i.db.WithContext(ctx).Where("tx_id = ?", txID.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	entry, err := row.entry()
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// GetAccountTransactions returns up to [limit] transactions that referenced
// [addr], most recent first.
func (i *Indexer) GetAccountTransactions(ctx context.Context, addr codec.Address, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	db := i.db.WithContext(ctx)
	var rows []transactionRow
	err := db.
		Where("tx_id IN (?)", db.Model(&accountRow{}).Select("tx_id").Where("address = ?", addr.String())).
		Order("sequence desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LastSequence returns the highest indexed sequence number, or 0 when the
// index is empty.
func (i *Indexer) LastSequence(ctx context.Context) (uint64, error) {
	var seq uint64
	err := i.db.WithContext(ctx).Model(&transactionRow{}).Select("COALESCE(MAX(sequence), 0)").Scan(&seq).Error
	return seq, err
}

func (i *Indexer) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *transactionRow) entry() (*Entry, error) {
	txID, err := ids.FromString(r.TxID)
	if err != nil {
		return nil, err
	}
	entry := &Entry{
		TxID:      txID,
		Sequence:  r.Sequence,
		Timestamp: r.Timestamp,
		Success:   r.Success,
		Kind:      r.Kind,
		Error:     r.Error,
		TxBytes:   r.TxBytes,
	}
	if r.Instructions != "" {
		entry.Instructions = strings.Split(r.Instructions, ",")
	}
	if r.ProgramID != "" {
		if entry.ProgramID, err = codec.ParseAddress(r.ProgramID); err != nil {
			return nil, err
		}
	}
	if r.Account != "" {
		if entry.Account, err = codec.ParseAddress(r.Account); err != nil {
			return nil, err
		}
	}
	return entry, nil
}
