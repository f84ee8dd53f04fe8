// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and restores zstd-compressed YAML snapshots of every
// registered table. A snapshot holds raw rows, so it can be restored into
// any supported database type.
package backup

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cast"
	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/db"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into every snapshot.
const FormatVersion = 1

// Snapshot is the decoded content of a backup.
type Snapshot struct {
	Format   int                         `yaml:"format"`
	Created  time.Time                   `yaml:"created"`
	Engine   string                      `yaml:"engine,omitempty"`
	Versions map[string]int              `yaml:"versions"`
	Tables   map[string][]map[string]any `yaml:"tables"`
}

// RowCount returns the number of rows across all tables.
func (s *Snapshot) RowCount() int {
	n := 0
	for _, rows := range s.Tables {
		n += len(rows)
	}
	return n
}

// Take reads every registered table of be. Version info must have been
// read already.
func Take(ctx context.Context, be *backend.Backend, engine string) (*Snapshot, error) {
	snap := &Snapshot{
		Format:   FormatVersion,
		Created:  time.Now().UTC().Truncate(time.Second),
		Engine:   engine,
		Versions: be.Versions(),
		Tables:   make(map[string][]map[string]any),
	}
	for _, ob := range be.Registry().All() {
		table := ob.TableName()
		if _, done := snap.Tables[table]; done {
			continue
		}
		res, err := be.ExecuteSelectStatement(ctx, be.CreateStatementFromSQL("SELECT * FROM "+table))
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		rows := []map[string]any{}
		for row := range db.Rows(res) {
			rows = append(rows, row.Values())
		}
		if err := res.Err(); err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		snap.Tables[table] = rows
	}
	return snap, nil
}

// Write encodes snap as YAML into a zstd stream on w.
func Write(snap *Snapshot, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := yaml.NewEncoder(zw)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	return zw.Close()
}

// Dump takes a snapshot of be and writes it to w.
func Dump(ctx context.Context, be *backend.Backend, engine string, w io.Writer) (*Snapshot, error) {
	snap, err := Take(ctx, be, engine)
	if err != nil {
		return nil, err
	}
	return snap, Write(snap, w)
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var snap Snapshot
	if err := yaml.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if snap.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported backup format %d", snap.Format)
	}
	return &snap, nil
}

// Restore replaces the registered tables of be with the rows of snap.
// Tables are recreated at the compiled versions; rows are copied column by
// column, so columns the snapshot lacks stay NULL and unknown ones are
// dropped.
func Restore(ctx context.Context, be *backend.Backend, snap *Snapshot) error {
	conn := be.Conn()
	if conn == nil {
		return db.ErrNoConnection
	}
	for _, ob := range be.Registry().All() {
		if err := conn.DropTable(ctx, ob.TableName()); err != nil {
			return err
		}
	}
	if err := conn.DropTable(ctx, backend.VersionTable); err != nil {
		return err
	}
	if err := be.ResetVersionInfo(ctx); err != nil {
		return err
	}
	if err := be.CreateAllTables(ctx); err != nil {
		return err
	}
	return be.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, ob := range be.Registry().All() {
			known := map[string]bool{}
			for _, ci := range backend.Columns(ob.Columns()) {
				if !ci.AutoInc {
					known[strings.ToLower(ci.Name)] = true
				}
			}
			for _, row := range snap.Tables[ob.TableName()] {
				if err := insertRow(ctx, be, ob.TableName(), known, row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertRow(ctx context.Context, be *backend.Backend, table string, known map[string]bool, row map[string]any) error {
	var names, values []string
	for _, col := range slices.Sorted(maps.Keys(row)) {
		if !known[strings.ToLower(col)] {
			continue
		}
		names = append(names, col)
		values = append(values, literal(be, row[col]))
	}
	if len(names) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)", table, strings.Join(names, ", "), strings.Join(values, ", "))
	if _, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(sql)); err != nil {
		return fmt.Errorf("restore %s: %w", table, err)
	}
	return nil
}

func literal(be *backend.Backend, v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return be.QuoteString(backend.TimeToString(x))
	case []byte:
		return be.QuoteString(string(x))
	}
	return be.QuoteString(cast.ToString(v))
}
