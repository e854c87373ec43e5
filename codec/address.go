// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const AddressLen = 32

// Address is the 32 byte public identity of a ledger account. Wallet
// accounts use their ed25519 public key directly.
type Address [AddressLen]byte

// EmptyAddress is also the identity of the system program.
var EmptyAddress = Address{}

// ToAddress copies [b] into an Address. [b] must be exactly [AddressLen]
// bytes long.
func ToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress decodes the base58 form of an Address.
func ParseAddress(s string) (Address, error) {
	b := base58.Decode(s)
	if len(b) == 0 && len(s) != 0 {
		return EmptyAddress, fmt.Errorf("%w: %q is not base58", ErrInvalidAddress, s)
	}
	return ToAddress(b)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// MarshalText returns the base58 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a base58-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
