// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/program"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// MaxCallDepth bounds nested program invocations, counting the top-level
// instruction.
const MaxCallDepth = 4

type invokeContextKey struct{}

// invokeContext tracks the accounts of one transaction. Every handle is
// shared by all instructions that reference the same address, and [pre]
// holds the state at the last point it was verified.
type invokeContext struct {
	order    []codec.Address
	accounts map[codec.Address]*program.AccountInfo
	pre      map[codec.Address]*program.AccountInfo
	initial  map[codec.Address]*program.AccountInfo
	stack    []codec.Address
}

func newInvokeContext() *invokeContext {
	return &invokeContext{
		accounts: make(map[codec.Address]*program.AccountInfo),
		pre:      make(map[codec.Address]*program.AccountInfo),
		initial:  make(map[codec.Address]*program.AccountInfo),
	}
}

func invokeContextFrom(ctx context.Context) (*invokeContext, bool) {
	ic, ok := ctx.Value(invokeContextKey{}).(*invokeContext)
	return ic, ok
}

func (ic *invokeContext) add(info *program.AccountInfo) {
	ic.order = append(ic.order, info.Key)
	ic.accounts[info.Key] = info
	ic.pre[info.Key] = info.Clone()
	ic.initial[info.Key] = info.Clone()
}

// changed reports whether [addr] differs from its state when loaded.
func (ic *invokeContext) changed(addr codec.Address) bool {
	initial, post := ic.initial[addr], ic.accounts[addr]
	return initial.Lamports != post.Lamports ||
		initial.Owner != post.Owner ||
		!bytes.Equal(initial.Data, post.Data)
}

func (ic *invokeContext) snapshot() {
	for addr, info := range ic.accounts {
		ic.pre[addr] = info.Clone()
	}
}

// verify checks every change made since the last snapshot as if it was made
// by [programID].
func (ic *invokeContext) verify(programID codec.Address) error {
	var preTotal, postTotal uint64
	for _, addr := range ic.order {
		var (
			pre  = ic.pre[addr]
			post = ic.accounts[addr]
			err  error
		)
		if preTotal, err = smath.Add(preTotal, pre.Lamports); err != nil {
			return err
		}
		if postTotal, err = smath.Add(postTotal, post.Lamports); err != nil {
			return err
		}

		dataChanged := !bytes.Equal(pre.Data, post.Data)
		ownerChanged := pre.Owner != post.Owner
		lamportsChanged := pre.Lamports != post.Lamports
		if !dataChanged && !ownerChanged && !lamportsChanged && pre.Executable == post.Executable {
			continue
		}
		switch {
		case !post.IsWritable:
			return fmt.Errorf("%w: %s", ErrReadonlyAccountModified, addr)
		case pre.Executable:
			return fmt.Errorf("%w: %s", ErrExecutableModified, addr)
		case pre.Owner == programID:
		case ownerChanged:
			return fmt.Errorf("%w: %s", ErrModifiedProgramID, addr)
		case dataChanged:
			return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, addr)
		case post.Lamports < pre.Lamports:
			return fmt.Errorf("%w: %s", ErrExternalAccountLamportSpend, addr)
		case pre.Executable != post.Executable:
			return fmt.Errorf("%w: %s", ErrExecutableModified, addr)
		}
	}
	if preTotal != postTotal {
		return fmt.Errorf("%w: %d before, %d after", ErrUnbalancedInstruction, preTotal, postTotal)
	}
	return nil
}

// invoke runs [fn] on behalf of [programID]. Changes made by the caller
// since the last snapshot are verified against the caller first, then the
// changes made by [fn] are verified against [programID].
func (ic *invokeContext) invoke(programID codec.Address, fn func() error) error {
	if len(ic.stack) >= MaxCallDepth {
		return fmt.Errorf("%w: %d", ErrCallDepth, len(ic.stack))
	}
	if n := len(ic.stack); n > 0 {
		if err := ic.verify(ic.stack[n-1]); err != nil {
			return err
		}
		ic.snapshot()
	}

	ic.stack = append(ic.stack, programID)
	defer func() {
		ic.stack = ic.stack[:len(ic.stack)-1]
	}()
	if err := fn(); err != nil {
		return err
	}
	if err := ic.verify(programID); err != nil {
		return err
	}
	ic.snapshot()
	return nil
}

var _ program.Allocator = (*allocator)(nil)

// allocator is the [program.Allocator] handed to programs. Inside a
// transaction it runs the system program as a nested invocation.
type allocator struct {
	system *SystemProgram
}

func (a *allocator) CreateAccount(ctx context.Context, params *program.CreateAccountParams) error {
	ic, ok := invokeContextFrom(ctx)
	if !ok {
		return a.system.CreateAccount(ctx, params)
	}
	return ic.invoke(SystemProgramID, func() error {
		return a.system.CreateAccount(ctx, params)
	})
}
