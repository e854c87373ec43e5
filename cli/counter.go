// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/builder"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/storage"
	"github.com/ava-labs/counterprogram/utils"
)

// Airdrop credits [lamports] to [nameOrAddress] and returns the new balance.
func (h *Handler) Airdrop(ctx context.Context, nameOrAddress string, lamports uint64) (uint64, error) {
	addr, _, err := h.resolve(ctx, nameOrAddress)
	if err != nil {
		return 0, err
	}
	balance, err := h.rt.Airdrop(ctx, addr, lamports)
	if err != nil {
		return 0, err
	}
	utils.Outf("{{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n", addr, utils.FormatBalance(balance))
	return balance, nil
}

// Initialize creates the counter account of the stored key [counter], funded
// by the stored key [payer].
func (h *Handler) Initialize(ctx context.Context, payer string, counter string, value uint64) (*runtime.Result, error) {
	payerKey, err := h.GetKey(ctx, payer)
	if err != nil {
		return nil, err
	}
	counterKey, err := h.GetKey(ctx, counter)
	if err != nil {
		return nil, err
	}
	return h.submit(
		ctx,
		[]ed25519.PrivateKey{payerKey, counterKey},
		builder.Initialize(h.cfg.ProgramID, counterKey.Address(), payerKey.Address(), value),
	)
}

// Increment steps [counter] up by one. [signer] may be empty since the
// program does not require a signature to step a counter.
func (h *Handler) Increment(ctx context.Context, counter string, signer string) (*runtime.Result, error) {
	return h.step(ctx, counter, signer, builder.Increment)
}

func (h *Handler) Decrement(ctx context.Context, counter string, signer string) (*runtime.Result, error) {
	return h.step(ctx, counter, signer, builder.Decrement)
}

func (h *Handler) step(
	ctx context.Context,
	counter string,
	signer string,
	build func(programID, counter codec.Address) *runtime.Instruction,
) (*runtime.Result, error) {
	addr, _, err := h.resolve(ctx, counter)
	if err != nil {
		return nil, err
	}
	var signers []ed25519.PrivateKey
	if signer != "" {
		key, err := h.GetKey(ctx, signer)
		if err != nil {
			return nil, err
		}
		signers = append(signers, key)
	}
	return h.submit(ctx, signers, build(h.cfg.ProgramID, addr))
}

// submit signs and processes a transaction. A failed instruction is reported
// through the returned result, not the error.
func (h *Handler) submit(ctx context.Context, signers []ed25519.PrivateKey, instrs ...*runtime.Instruction) (*runtime.Result, error) {
	tx, err := builder.Sign(signers, instrs...)
	if err != nil {
		return nil, err
	}
	result, err := h.rt.ProcessTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	if result.Success {
		utils.Outf("{{green}}transaction succeeded:{{/}} %s {{cyan}}sequence:{{/}} %d\n", result.TxID, result.Sequence)
	} else {
		h.log.Debug("transaction failed",
			zap.Stringer("txID", result.TxID),
			zap.String("kind", result.Kind),
		)
		utils.Outf("{{red}}transaction failed:{{/}} %s {{red}}kind:{{/}} %s {{red}}error:{{/}} %s\n", result.TxID, result.Kind, result.Error)
	}
	return result, nil
}

// Get reads the value of the counter account [counter].
func (h *Handler) Get(ctx context.Context, counter string) (uint64, error) {
	addr, _, err := h.resolve(ctx, counter)
	if err != nil {
		return 0, err
	}
	acct, err := h.rt.GetAccount(ctx, addr)
	if err != nil {
		return 0, err
	}
	if acct.Owner != h.cfg.ProgramID {
		return 0, fmt.Errorf("%w: %s is owned by %s", ErrNotACounter, addr, acct.Owner)
	}
	c, err := storage.DecodeCounter(acct.Data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotACounter, err)
	}
	return c.Counter, nil
}
