// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import "errors"

var (
	// ErrNotRegistered is returned when no Object Backend handles a type.
	ErrNotRegistered = errors.New("no object backend registered for type")
	// ErrNoPrimaryKey is returned when an update or delete cannot build its WHERE clause.
	ErrNoPrimaryKey = errors.New("object has no primary key value")
	// ErrLoading is returned by write paths invoked during a bulk load.
	ErrLoading = errors.New("backend is loading")
)
