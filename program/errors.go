// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import "errors"

var (
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys   = errors.New("not enough account keys")
	ErrIncorrectProgramID     = errors.New("incorrect program id")
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrProvisioning           = errors.New("account provisioning failed")
)

// ErrorKind is the coarse failure reason reported to callers of [Processor.Process].
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindInvalidInstructionData
	KindNotEnoughAccountKeys
	KindIncorrectProgramID
	KindInvalidAccountData
	KindProvisioning
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvalidInstructionData:
		return "InvalidInstructionData"
	case KindNotEnoughAccountKeys:
		return "NotEnoughAccountKeys"
	case KindIncorrectProgramID:
		return "IncorrectProgramId"
	case KindInvalidAccountData:
		return "InvalidAccountData"
	case KindProvisioning:
		return "Provisioning"
	default:
		return "Unknown"
	}
}

// Kind classifies [err]. Provisioning is checked first so that an allocator
// error is never mistaken for one raised by the program itself.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrProvisioning):
		return KindProvisioning
	case errors.Is(err, ErrInvalidInstructionData):
		return KindInvalidInstructionData
	case errors.Is(err, ErrNotEnoughAccountKeys):
		return KindNotEnoughAccountKeys
	case errors.Is(err, ErrIncorrectProgramID):
		return KindIncorrectProgramID
	case errors.Is(err, ErrInvalidAccountData):
		return KindInvalidAccountData
	default:
		return KindUnknown
	}
}
