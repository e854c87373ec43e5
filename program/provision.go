// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"
	"fmt"

	"github.com/ava-labs/counterprogram/storage"
)

// provision asks the allocator for a new record sized for one counter and
// funded to the rent-exempt minimum, owned by the processor's program.
func (p *Processor) provision(ctx context.Context, accts *initializeAccounts) error {
	space := uint64(storage.CounterAccountSize)
	lamports, err := p.rent.MinimumBalance(ctx, space)
	if err != nil {
		return fmt.Errorf("%w: rent: %w", ErrProvisioning, err)
	}
	if err := p.allocator.CreateAccount(ctx, &CreateAccountParams{
		Payer:         accts.payer,
		Account:       accts.record,
		SystemProgram: accts.systemProgram,
		Lamports:      lamports,
		Space:         space,
		Owner:         p.programID,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	return nil
}
