// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the MySQL engine descriptor.
package db // import "github.com/toeirei/ledgerbase/internal/db"

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// mysqlMaxVarchar is the widest string column kept as varchar.
const mysqlMaxVarchar = 255

var mysqlEngine = &engine{
	name:   "mysql",
	driver: "mysql",
	columnType: func(ci ColumnInfo) string {
		switch ci.Type {
		case TypeString:
			// Wide varchars count fully against the 65,535-byte row limit;
			// text columns are stored off-row.
			t := "text"
			if ci.Size > 0 && ci.Size <= mysqlMaxVarchar {
				t = fmt.Sprintf("varchar(%d)", ci.Size)
			}
			if ci.Unicode {
				t += " CHARACTER SET utf8mb4"
			}
			return t
		case TypeInt:
			return "integer"
		case TypeInt64:
			return "bigint"
		case TypeDate:
			return "date"
		case TypeDateTime:
			return "datetime"
		case TypeDouble:
			return "double"
		}
		return "text"
	},
	autoIncKey:  "integer NOT NULL AUTO_INCREMENT PRIMARY KEY",
	tableSuffix: " DEFAULT CHARSET=utf8mb4",
	tableExists: func(quoted string) string {
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = " + quoted
	},
	maintain: func(ctx context.Context, c *Conn) error {
		var tables []string
		if err := QueryRawInto(ctx, c.bun, &tables, "SHOW TABLES"); err != nil {
			return fmt.Errorf("mysql show tables failed: %w", err)
		}
		var lastErr error
		for _, table := range tables {
			if _, err := c.bun.ExecContext(ctx, "OPTIMIZE TABLE "+c.quoteIdent(table)); err != nil {
				// Non-fatal per-table: remember last error and continue
				dbLogf("mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
		return nil
	},
}
