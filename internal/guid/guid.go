// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package guid provides the identifier used to key every persisted object.
// A GUID is a random 128-bit value written as 32 lowercase hex digits, the
// form stored in every guid column.
package guid

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Len is the length of the textual form of a GUID.
const Len = 32

// ErrInvalid is returned when a string is not a valid GUID.
var ErrInvalid = errors.New("invalid guid")

// GUID identifies a persisted object.
type GUID [16]byte

// Zero is the null GUID.
var Zero GUID

// New returns a fresh random GUID.
func New() GUID {
	return GUID(uuid.New())
}

// Parse reads a GUID from its 32-hex-digit form. The dashed uuid form is
// accepted as well so values written by other tools still load.
func Parse(s string) (GUID, error) {
	if len(s) != Len && len(s) != 36 {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return GUID(u), nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and constants.
func MustParse(s string) GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String returns the 32-hex-digit form.
func (g GUID) String() string {
	return hex.EncodeToString(g[:])
}

// IsZero reports whether g is the null GUID.
func (g GUID) IsZero() bool {
	return g == Zero
}
