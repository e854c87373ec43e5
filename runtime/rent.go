// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"

	"github.com/ava-labs/counterprogram/program"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2
	// DefaultStorageOverhead is the per-account metadata charged on top of
	// the data length.
	DefaultStorageOverhead = 128
)

var _ program.Rent = (*Rent)(nil)

// Rent is the rent oracle. An account is rent exempt when it holds
// (StorageOverhead + len(data)) * LamportsPerByteYear * ExemptionThreshold.
type Rent struct {
	LamportsPerByteYear uint64 `yaml:"lamportsPerByteYear" json:"lamportsPerByteYear" env:"LAMPORTS_PER_BYTE_YEAR"`
	ExemptionThreshold  uint64 `yaml:"exemptionThreshold" json:"exemptionThreshold" env:"EXEMPTION_THRESHOLD"`
	StorageOverhead     uint64 `yaml:"storageOverhead" json:"storageOverhead" env:"STORAGE_OVERHEAD"`
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		StorageOverhead:     DefaultStorageOverhead,
	}
}

func (r Rent) MinimumBalance(_ context.Context, size uint64) (uint64, error) {
	bytes, err := smath.Add(r.StorageOverhead, size)
	if err != nil {
		return 0, err
	}
	perYear, err := smath.Mul(bytes, r.LamportsPerByteYear)
	if err != nil {
		return 0, err
	}
	return smath.Mul(perYear, r.ExemptionThreshold)
}

// IsExempt reports whether [lamports] keeps an account of [size] bytes alive.
func (r Rent) IsExempt(ctx context.Context, lamports uint64, size uint64) bool {
	minimum, err := r.MinimumBalance(ctx, size)
	return err == nil && lamports >= minimum
}
