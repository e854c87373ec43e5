// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
)

// Keys live in the ledger database below prefixes the runtime never uses.
const (
	keyPrefix   byte = 0xf0
	namesPrefix byte = 0xf1

	maxKeyNameLen = 64
	maxKeys       = 1_024
)

func keyKey(name string) []byte {
	k := make([]byte, 1+len(name))
	k[0] = keyPrefix
	copy(k[1:], name)
	return k
}

func namesKey() []byte {
	return []byte{namesPrefix}
}

func verifyKeyName(name string) error {
	if len(name) == 0 || len(name) > maxKeyNameLen {
		return fmt.Errorf("%w: %q must be 1-%d bytes", ErrInvalidKeyName, name, maxKeyNameLen)
	}
	// Names share the argument space with base58 addresses.
	if _, err := codec.ParseAddress(name); err == nil {
		return fmt.Errorf("%w: %q parses as an address", ErrInvalidKeyName, name)
	}
	return nil
}

// StoreKey saves [priv] under [name] and appends [name] to the key index in
// one batch.
func (h *Handler) StoreKey(ctx context.Context, name string, priv ed25519.PrivateKey) error {
	if err := verifyKeyName(name); err != nil {
		return err
	}
	names, err := h.keyNames(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		return fmt.Errorf("%w: key %q", ErrDuplicate, name)
	}
	if len(names) >= maxKeys {
		return fmt.Errorf("%w: more than %d keys", ErrInvalidKeyName, maxKeys)
	}
	names = append(names, name)

	batch := h.db.NewBatch()
	if err := batch.Put(keyKey(name), priv[:]); err != nil {
		return err
	}
	if err := batch.Put(namesKey(), packNames(names)); err != nil {
		return err
	}
	return batch.Write()
}

func (h *Handler) GetKey(ctx context.Context, name string) (ed25519.PrivateKey, error) {
	v, err := h.db.GetValue(ctx, keyKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return ed25519.EmptyPrivateKey, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	return ed25519.ToPrivateKey(v)
}

func (h *Handler) keyNames(ctx context.Context) ([]string, error) {
	v, err := h.db.GetValue(ctx, namesKey())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unpackNames(v)
}

func packNames(names []string) []byte {
	size := 4
	for _, n := range names {
		size += 4 + len(n)
	}
	p := codec.NewWriter(size, size)
	p.PackInt(uint32(len(names)))
	for _, n := range names {
		p.PackBytes([]byte(n))
	}
	return p.Bytes()
}

func unpackNames(b []byte) ([]string, error) {
	p := codec.NewReader(b, len(b))
	count := int(p.UnpackInt(false))
	if count > maxKeys {
		return nil, fmt.Errorf("%w: %d names", ErrCorruptKeyIndex, count)
	}
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var n []byte
		p.UnpackBytes(maxKeyNameLen, true, &n)
		names = append(names, string(n))
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptKeyIndex, err)
	}
	return names, nil
}
