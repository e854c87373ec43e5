// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import "errors"

var (
	ErrDuplicate       = errors.New("duplicate")
	ErrKeyNotFound     = errors.New("key not found")
	ErrInvalidKeyName  = errors.New("invalid key name")
	ErrNotACounter     = errors.New("account is not a counter")
	ErrTxFailed        = errors.New("tx failed")
	ErrInvalidPlan     = errors.New("invalid plan")
	ErrInvalidStep     = errors.New("invalid step")
	ErrRequireFailed   = errors.New("requirement not met")
	ErrCorruptKeyIndex = errors.New("corrupt key index")
)
