// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "errors"

var (
	// system program
	ErrMissingSystemProgram     = errors.New("system program account missing")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrInvalidAccountDataLength = errors.New("invalid account data length")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInvalidSystemInstruction = errors.New("invalid system instruction")

	// transactions
	ErrNoInstructions        = errors.New("transaction has no instructions")
	ErrTooManyInstructions   = errors.New("too many instructions")
	ErrTooManyAccounts       = errors.New("too many accounts")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrDuplicateSigner       = errors.New("duplicate signer")
	ErrUnknownProgram        = errors.New("unknown program")
	ErrDuplicateTransaction  = errors.New("transaction already processed")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInvalidAccountRecord  = errors.New("invalid account record")
	ErrInsufficientFundsRent = errors.New("insufficient funds for rent")

	// post-instruction checks
	ErrReadonlyAccountModified     = errors.New("read-only account modified")
	ErrExternalAccountDataModified = errors.New("data of account not owned by program modified")
	ErrExternalAccountLamportSpend = errors.New("lamports of account not owned by program spent")
	ErrModifiedProgramID           = errors.New("owner of account not owned by program changed")
	ErrUnbalancedInstruction       = errors.New("instruction changed total lamports")
	ErrExecutableModified          = errors.New("executable account modified")
	ErrCallDepth                   = errors.New("cross-program invocation depth exceeded")
)
