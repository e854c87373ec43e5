// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/perms"

	formatter "github.com/onsi/ginkgo/v2/formatter"
)

// NativeDecimals is the number of decimal places between a lamport and a
// whole token.
const NativeDecimals = 9

var ErrInvalidSize = errors.New("invalid size")

func ToID(bytes []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(bytes))
}

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outf writes to stdout with ginkgo color markup.
//
// e.g.,
//
//	Outf("{{green}}{{bold}}counter %d{{/}}\n", 42)
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

func FormatBalance(bal uint64) string {
	s := strconv.FormatUint(bal, 10)
	if len(s) <= NativeDecimals {
		s = strings.Repeat("0", NativeDecimals-len(s)+1) + s
	}
	return s[:len(s)-NativeDecimals] + "." + s[len(s)-NativeDecimals:]
}

// ParseBalance parses a decimal token amount into lamports without going
// through floating point.
func ParseBalance(bal string) (uint64, error) {
	whole, frac, _ := strings.Cut(bal, ".")
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", strconv.ErrSyntax, bal, NativeDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	return strconv.ParseUint(whole+frac+strings.Repeat("0", NativeDecimals-len(frac)), 10, 64)
}

func SaveBytes(filename string, b []byte) error {
	return os.WriteFile(filename, b, perms.ReadWrite)
}

// LoadBytes reads [filename] and checks that it holds exactly [expectedSize]
// bytes. A negative size skips the check.
func LoadBytes(filename string, expectedSize int) ([]byte, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if expectedSize != -1 && len(bytes) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidSize, expectedSize, len(bytes))
	}
	return bytes, nil
}
