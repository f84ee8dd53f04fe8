// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/uptrace/bun"
)

// rawRunner accepts either *bun.DB or *bun.Tx since both expose NewRaw.
type rawRunner interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// execRaw runs a statement and returns the affected row count, or -1 when
// the driver cannot report it.
func execRaw(ctx context.Context, r rawRunner, query string) (int64, error) {
	res, err := r.NewRaw(query).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return -1, nil
	}
	return n, nil
}

// QueryRawInto runs a raw query and scans the result into dest using Bun's RawQuery.Scan.
func QueryRawInto(ctx context.Context, r rawRunner, dest interface{}, query string, args ...interface{}) error {
	return r.NewRaw(query, args...).Scan(ctx, dest)
}
