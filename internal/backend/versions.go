// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/logging"
)

// VersionTable is the reserved table recording each table's schema version.
const VersionTable = "versions"

var versionColumns = []db.ColumnInfo{
	{Name: "table_name", Type: db.TypeString, Size: 50, Unicode: true, NotNull: true},
	{Name: "table_version", Type: db.TypeInt, NotNull: true},
}

// InitVersionInfo reads the versions table into memory. A database without
// one is pristine: the table is created and every version is 0.
func (be *Backend) InitVersionInfo(ctx context.Context) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	be.clearVersions()
	exists, err := be.conn.DoesTableExist(ctx, VersionTable)
	if err != nil {
		return err
	}
	if !exists {
		if err := be.conn.CreateTable(ctx, VersionTable, versionColumns); err != nil {
			return err
		}
		be.pristine = true
		return nil
	}
	res, err := be.ExecuteSelectStatement(ctx, be.CreateStatementFromSQL("SELECT * FROM "+VersionTable))
	if err != nil {
		return err
	}
	for row := range db.Rows(res) {
		name, err := row.GetString("table_name")
		if err != nil {
			continue
		}
		v, err := row.GetInt("table_version")
		if err != nil {
			continue
		}
		be.versions[name] = int(v)
		be.recorded[name] = true
	}
	return res.Err()
}

// ResetVersionInfo makes sure the versions table exists and forgets every
// recorded version.
func (be *Backend) ResetVersionInfo(ctx context.Context) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	exists, err := be.conn.DoesTableExist(ctx, VersionTable)
	if err != nil {
		return err
	}
	if !exists {
		if err := be.conn.CreateTable(ctx, VersionTable, versionColumns); err != nil {
			return err
		}
	}
	be.clearVersions()
	return nil
}

func (be *Backend) clearVersions() {
	be.versions = make(map[string]int)
	be.recorded = make(map[string]bool)
	be.pending = make(map[string]int)
}

// FinalizeVersionInfo retries version writes that failed earlier and
// releases the in-memory map.
func (be *Backend) FinalizeVersionInfo(ctx context.Context) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(be.pending)) {
		if err := be.writeVersion(ctx, name, be.pending[name]); err != nil {
			errs = append(errs, err)
		}
	}
	be.versions = nil
	be.recorded = nil
	be.pending = nil
	return errors.Join(errs...)
}

// TableVersion returns the stored version of table; 0 means it does not exist.
func (be *Backend) TableVersion(table string) int {
	return be.versions[table]
}

// Versions returns a copy of the version map.
func (be *Backend) Versions() map[string]int {
	return maps.Clone(be.versions)
}

// SetTableVersion records version for table in memory and in the versions
// table. A failed write is kept for FinalizeVersionInfo.
func (be *Backend) SetTableVersion(ctx context.Context, table string, version int) error {
	if be.versions == nil {
		be.clearVersions()
	}
	be.versions[table] = version
	if err := be.writeVersion(ctx, table, version); err != nil {
		be.pending[table] = version
		return err
	}
	delete(be.pending, table)
	return nil
}

func (be *Backend) writeVersion(ctx context.Context, table string, version int) error {
	var sql string
	if be.recorded[table] {
		sql = fmt.Sprintf("UPDATE %s SET table_version = %s WHERE table_name = %s",
			VersionTable, be.QuoteString(strconv.Itoa(version)), be.QuoteString(table))
	} else {
		sql = fmt.Sprintf("INSERT INTO %s (table_name, table_version) VALUES (%s, %s)",
			VersionTable, be.QuoteString(table), be.QuoteString(strconv.Itoa(version)))
	}
	if _, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(sql)); err != nil {
		logging.Errorf("cannot record version %d of table %s: %v", version, table, err)
		return fmt.Errorf("set version of %s: %w", table, err)
	}
	be.recorded[table] = true
	return nil
}
