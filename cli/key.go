// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/crypto/ed25519"
	"github.com/ava-labs/counterprogram/utils"
)

type NamedKey struct {
	Name    string
	Address codec.Address
}

func (h *Handler) CreateKey(ctx context.Context, name string) (codec.Address, error) {
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := h.StoreKey(ctx, name, priv); err != nil {
		return codec.EmptyAddress, err
	}
	addr := priv.Address()
	h.log.Debug("key created",
		zap.String("name", name),
		zap.Stringer("address", addr),
	)
	utils.Outf("{{green}}created key:{{/}} %s {{cyan}}address:{{/}} %s\n", name, addr)
	return addr, nil
}

// ImportKey stores the raw private key held in [path] under [name].
func (h *Handler) ImportKey(ctx context.Context, name string, path string) (codec.Address, error) {
	b, err := utils.LoadBytes(path, ed25519.PrivateKeyLen)
	if err != nil {
		return codec.EmptyAddress, err
	}
	priv, err := ed25519.ToPrivateKey(b)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := h.StoreKey(ctx, name, priv); err != nil {
		return codec.EmptyAddress, err
	}
	addr := priv.Address()
	utils.Outf("{{green}}imported key:{{/}} %s {{cyan}}address:{{/}} %s\n", name, addr)
	return addr, nil
}

// ExportKey writes the raw private key stored under [name] to [path].
func (h *Handler) ExportKey(ctx context.Context, name string, path string) error {
	priv, err := h.GetKey(ctx, name)
	if err != nil {
		return err
	}
	if err := utils.SaveBytes(path, priv[:]); err != nil {
		return err
	}
	utils.Outf("{{green}}exported key:{{/}} %s {{cyan}}to:{{/}} %s\n", name, path)
	return nil
}

// Keys lists the stored keys in creation order.
func (h *Handler) Keys(ctx context.Context) ([]NamedKey, error) {
	names, err := h.keyNames(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]NamedKey, 0, len(names))
	for _, name := range names {
		priv, err := h.GetKey(ctx, name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, NamedKey{Name: name, Address: priv.Address()})
	}
	return keys, nil
}

func (h *Handler) PrintKeys(ctx context.Context) error {
	keys, err := h.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
	for i, k := range keys {
		acct, err := h.rt.GetAccount(ctx, k.Address)
		if err != nil {
			return err
		}
		utils.Outf(
			"%d) {{cyan}}name:{{/}} %s {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n",
			i,
			k.Name,
			k.Address,
			utils.FormatBalance(acct.Lamports),
		)
	}
	return nil
}

// resolve maps [nameOrAddress] to an address. The private key is returned
// when [nameOrAddress] names a stored key.
func (h *Handler) resolve(ctx context.Context, nameOrAddress string) (codec.Address, *ed25519.PrivateKey, error) {
	priv, err := h.GetKey(ctx, nameOrAddress)
	if err == nil {
		return priv.Address(), &priv, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return codec.EmptyAddress, nil, err
	}
	addr, perr := codec.ParseAddress(nameOrAddress)
	if perr != nil {
		return codec.EmptyAddress, nil, err
	}
	return addr, nil, nil
}
