// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the SQLite engine descriptor.
package db // import "github.com/toeirei/ledgerbase/internal/db"

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var sqliteEngine = &engine{
	name:   "sqlite",
	driver: "sqlite",
	columnType: func(ci ColumnInfo) string {
		switch ci.Type {
		case TypeString:
			if ci.Size > 0 {
				return fmt.Sprintf("text(%d)", ci.Size)
			}
			return "text"
		case TypeInt:
			return "integer"
		case TypeInt64:
			return "bigint"
		case TypeDate:
			return "text(10)"
		case TypeDateTime:
			return "text(19)"
		case TypeDouble:
			return "float8"
		}
		return "text"
	},
	autoIncKey: "integer PRIMARY KEY AUTOINCREMENT NOT NULL",
	tableExists: func(quoted string) string {
		return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = " + quoted
	},
	maintain: func(ctx context.Context, c *Conn) error {
		// PRAGMA optimize may not be supported in some environments
		// (e.g., in-memory filesystems); treat optimize errors as non-fatal.
		if _, err := c.bun.ExecContext(ctx, "PRAGMA optimize"); err != nil {
			dbLogf("sqlite optimize failed (ignored): %v", err)
		}
		if _, err := c.bun.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		var res []string
		if err := QueryRawInto(ctx, c.bun, &res, "PRAGMA integrity_check"); err != nil {
			return fmt.Errorf("sqlite integrity_check failed: %w", err)
		}
		if len(res) == 0 || res[0] != "ok" {
			return fmt.Errorf("sqlite integrity_check failed: %s", strings.Join(res, "; "))
		}
		return nil
	},
}

// isSQLiteMemory reports whether dsn names an in-memory SQLite database.
// Each connection to such a database sees its own schema unless the pool is
// limited to a single connection.
func isSQLiteMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
