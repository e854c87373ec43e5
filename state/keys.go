// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

const (
	Read  Permissions = 1
	Write             = 1<<1 | Read

	None Permissions = 0
	All              = Read | Write
)

// Keys is the set of keys a [View] may touch along with what it may do to
// each one.
type Keys map[string]Permissions

type Permissions byte

// Add unions [permission] into the existing permissions of [name] so that a
// key referenced twice keeps the widest access.
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

func (p Permissions) String() string {
	switch p {
	case None:
		return "none"
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}
