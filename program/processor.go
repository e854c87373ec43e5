// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Processor is the counter program. It holds no state between invocations.
type Processor struct {
	programID codec.Address
	allocator Allocator
	rent      Rent
	log       logging.Logger
}

func New(programID codec.Address, allocator Allocator, rent Rent, log logging.Logger) *Processor {
	return &Processor{
		programID: programID,
		allocator: allocator,
		rent:      rent,
		log:       log,
	}
}

func (p *Processor) ProgramID() codec.Address {
	return p.programID
}

// Process decodes [data] and applies it to [accounts]. The record is only
// written once every check has passed, so a returned error never leaves a
// partially updated record behind.
func (p *Processor) Process(ctx context.Context, accounts []*AccountInfo, data []byte) error {
	start := time.Now()
	instruction, err := Unpack(data)
	if err != nil {
		return err
	}
	p.log.Debug("unpacked instruction",
		zap.String("instruction", instruction.Name()),
		zap.Duration("t", time.Since(start)),
	)

	switch i := instruction.(type) {
	case *Initialize:
		return p.initialize(ctx, accounts, i.InitialValue)
	case *Increment:
		return p.step(accounts, IncrementID)
	case *Decrement:
		return p.step(accounts, DecrementID)
	default:
		return fmt.Errorf("%w: unhandled instruction %T", ErrInvalidInstructionData, instruction)
	}
}

func (p *Processor) initialize(ctx context.Context, accounts []*AccountInfo, value uint64) error {
	accts, err := bindInitialize(accounts)
	if err != nil {
		return err
	}
	if err := p.provision(ctx, accts); err != nil {
		return err
	}
	if err := (&storage.CounterAccount{Counter: value}).EncodeInto(accts.record.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	p.log.Info("counter account initialized",
		zap.Stringer("account", accts.record.Key),
		zap.Uint64("counter", value),
	)
	return nil
}

func (p *Processor) step(accounts []*AccountInfo, op uint8) error {
	record, err := bindRecord(p.programID, accounts)
	if err != nil {
		return err
	}
	counter, err := storage.DecodeCounter(record.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}

	var (
		next uint64
		msg  string
	)
	if op == IncrementID {
		next, err = smath.Add(counter.Counter, 1)
		msg = "counter incremented"
	} else {
		next, err = smath.Sub(counter.Counter, 1)
		msg = "counter decremented"
	}
	if err != nil {
		return fmt.Errorf("%w: counter %d: %w", ErrInvalidAccountData, counter.Counter, err)
	}

	counter.Counter = next
	if err := counter.EncodeInto(record.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	p.log.Info(msg,
		zap.Stringer("account", record.Key),
		zap.Uint64("counter", next),
	)
	return nil
}

// InstructionName returns the name of the instruction encoded in [data], or
// "invalid" if it does not decode.
func (*Processor) InstructionName(data []byte) string {
	i, err := Unpack(data)
	if err != nil {
		return "invalid"
	}
	return i.Name()
}
