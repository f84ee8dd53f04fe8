// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the PostgreSQL engine descriptor.
package db // import "github.com/toeirei/ledgerbase/internal/db"

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var postgresEngine = &engine{
	name: "postgres",
	// The pgx stdlib registers driver name "pgx".
	driver: "pgx",
	columnType: func(ci ColumnInfo) string {
		switch ci.Type {
		case TypeString:
			if ci.Size > 0 {
				return fmt.Sprintf("varchar(%d)", ci.Size)
			}
			return "text"
		case TypeInt:
			return "integer"
		case TypeInt64:
			return "int8"
		case TypeDate:
			return "date"
		case TypeDateTime:
			return "timestamp without time zone"
		case TypeDouble:
			return "double precision"
		}
		return "text"
	},
	autoIncKey: "serial PRIMARY KEY NOT NULL",
	tableExists: func(quoted string) string {
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = " + quoted
	},
	maintain: func(ctx context.Context, c *Conn) error {
		if _, err := c.bun.ExecContext(ctx, "VACUUM ANALYZE"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
		return nil
	},
}
