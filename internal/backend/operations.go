// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

// Operation selects the statement DoDBOperation builds.
type Operation int

const (
	OpInsert Operation = iota
	OpUpdate
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// TimeToString renders t in the canonical UTC timestamp form.
func TimeToString(t time.Time) string {
	return t.UTC().Format(db.DateTimeLayout)
}

// CreateTable creates table from cols.
func (be *Backend) CreateTable(ctx context.Context, table string, cols []*Column) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	return be.conn.CreateTable(ctx, table, Columns(cols))
}

// CreateVersionedTable creates table and records version for it.
func (be *Backend) CreateVersionedTable(ctx context.Context, table string, version int, cols []*Column) error {
	if err := be.CreateTable(ctx, table, cols); err != nil {
		return err
	}
	return be.SetTableVersion(ctx, table, version)
}

// CreateIndex creates index on the named physical columns of table.
func (be *Backend) CreateIndex(ctx context.Context, index, table string, columns ...string) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	return be.conn.CreateIndex(ctx, index, table, columns)
}

// AddColumnsToTable adds every physical column of cols to table.
func (be *Backend) AddColumnsToTable(ctx context.Context, table string, cols []*Column) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	return be.conn.AddColumnsToTable(ctx, table, Columns(cols))
}

// TableColumns returns the column names table currently has.
func (be *Backend) TableColumns(ctx context.Context, table string) ([]string, error) {
	res, err := be.ExecuteSelectStatement(ctx, be.CreateStatementFromSQL("SELECT * FROM "+table+" WHERE 1 = 0"))
	if err != nil {
		return nil, err
	}
	cols := slices.Clone(res.Columns())
	return cols, res.Close()
}

// AddMissingColumns adds the physical columns of cols that table lacks and
// returns their names. Existing columns and rows are left untouched.
func (be *Backend) AddMissingColumns(ctx context.Context, table string, cols []*Column) ([]string, error) {
	have, err := be.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	var missing []db.ColumnInfo
	for _, ci := range Columns(cols) {
		if !slices.Contains(have, strings.ToLower(ci.Name)) {
			missing = append(missing, ci)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if err := be.conn.AddColumnsToTable(ctx, table, missing); err != nil {
		return nil, err
	}
	names := make([]string, len(missing))
	for i, ci := range missing {
		names[i] = ci.Name
	}
	logging.Infof("table %s: added columns %s", table, strings.Join(names, ", "))
	return names, nil
}

// UpgradeTable rebuilds table with cols: a new table is created under a
// temporary name, the columns both schemas share are copied, the old table
// is dropped and the new one renamed into place.
func (be *Backend) UpgradeTable(ctx context.Context, table string, cols []*Column) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	have, err := be.TableColumns(ctx, table)
	if err != nil {
		return err
	}
	temp := table + "_new"
	if err := be.conn.DropTable(ctx, temp); err != nil {
		return err
	}
	if err := be.CreateTable(ctx, temp, cols); err != nil {
		return err
	}
	var shared []string
	for _, ci := range Columns(cols) {
		if slices.Contains(have, strings.ToLower(ci.Name)) {
			shared = append(shared, ci.Name)
		}
	}
	if len(shared) > 0 {
		list := strings.Join(shared, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", temp, list, list, table)
		if _, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(copySQL)); err != nil {
			_ = be.conn.DropTable(ctx, temp)
			return fmt.Errorf("upgrade %s: copy rows: %w", table, err)
		}
	}
	if err := be.conn.DropTable(ctx, table); err != nil {
		return err
	}
	return be.conn.RenameTable(ctx, temp, table)
}

// CreateStatementFromSQL wraps sql for the current connection.
func (be *Backend) CreateStatementFromSQL(sql string) *db.Statement {
	if be.conn == nil {
		return db.NewStatement(sql, be.QuoteString)
	}
	return be.conn.CreateStatementFromSQL(sql)
}

// QuoteString quotes s as a SQL literal for the current connection.
func (be *Backend) QuoteString(s string) string {
	if be.conn == nil {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return be.conn.QuoteString(s)
}

// retryable reports whether a failed statement may be retried after a
// reconnect. Statements inside a transaction are not: the transaction is gone.
func (be *Backend) retryable(err error) bool {
	return err != nil && be.txDepth == 0 && be.conn.DBError() == db.ErrConnLost
}

// ExecuteSelectStatement runs stmt. When the connection was lost it
// reconnects and tries once more.
func (be *Backend) ExecuteSelectStatement(ctx context.Context, stmt *db.Statement) (*db.Result, error) {
	if be.conn == nil {
		return nil, db.ErrNoConnection
	}
	res, err := be.conn.ExecuteSelect(ctx, stmt)
	if be.retryable(err) {
		if rerr := be.conn.RetryConnection(ctx, err.Error()); rerr == nil {
			res, err = be.conn.ExecuteSelect(ctx, stmt)
		}
	}
	if err != nil {
		logging.Errorf("error executing SQL %s: %v", stmt, err)
		return nil, err
	}
	return res, nil
}

// ExecuteNonSelectStatement runs stmt and returns the affected row count,
// retrying once after a lost connection.
func (be *Backend) ExecuteNonSelectStatement(ctx context.Context, stmt *db.Statement) (int64, error) {
	if be.conn == nil {
		return 0, db.ErrNoConnection
	}
	n, err := be.conn.ExecuteNonSelect(ctx, stmt)
	if be.retryable(err) {
		if rerr := be.conn.RetryConnection(ctx, err.Error()); rerr == nil {
			n, err = be.conn.ExecuteNonSelect(ctx, stmt)
		}
	}
	if err != nil {
		logging.Errorf("error executing SQL %s: %v", stmt, err)
		return 0, err
	}
	return n, nil
}

// queryPairs collects the (column, value) pairs of obj over cols.
func queryPairs(typeName string, obj any, cols []*Column) []db.Pair {
	var pairs []db.Pair
	for _, c := range cols {
		pairs = c.AddToQuery(typeName, obj, pairs)
	}
	return pairs
}

// keyPairs returns the pairs of the first column, which identifies the row.
func keyPairs(typeName string, obj any, cols []*Column) ([]db.Pair, error) {
	if len(cols) == 0 {
		return nil, ErrNoPrimaryKey
	}
	pairs := cols[0].AddToQuery(typeName, obj, nil)
	if len(pairs) == 0 {
		return nil, ErrNoPrimaryKey
	}
	for _, p := range pairs {
		if p.Null {
			return nil, ErrNoPrimaryKey
		}
	}
	return pairs, nil
}

func (be *Backend) literal(p db.Pair) string {
	if p.Null {
		return "NULL"
	}
	return be.QuoteString(p.Value)
}

// BuildStatement renders the statement for op without executing it.
func (be *Backend) BuildStatement(op Operation, table, typeName string, obj any, cols []*Column) (*db.Statement, error) {
	switch op {
	case OpInsert:
		pairs := queryPairs(typeName, obj, cols)
		names := make([]string, len(pairs))
		values := make([]string, len(pairs))
		for i, p := range pairs {
			names[i] = p.Column
			values[i] = be.literal(p)
		}
		return be.CreateStatementFromSQL(fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
			table, strings.Join(names, ", "), strings.Join(values, ", "))), nil
	case OpUpdate:
		key, err := keyPairs(typeName, obj, cols)
		if err != nil {
			return nil, err
		}
		pairs := queryPairs(typeName, obj, cols[1:])
		if len(pairs) == 0 {
			return nil, fmt.Errorf("update %s: no columns to set", table)
		}
		sets := make([]string, len(pairs))
		for i, p := range pairs {
			sets[i] = p.Column + " = " + be.literal(p)
		}
		stmt := be.CreateStatementFromSQL(fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", ")))
		stmt.AddWhereCond(typeName, key)
		return stmt, nil
	case OpDelete:
		key, err := keyPairs(typeName, obj, cols)
		if err != nil {
			return nil, err
		}
		stmt := be.CreateStatementFromSQL("DELETE FROM " + table)
		stmt.AddWhereCond(typeName, key)
		return stmt, nil
	}
	return nil, fmt.Errorf("unknown operation %d", op)
}

// DoDBOperation builds and executes the statement for op on obj. Every
// object write goes through here.
func (be *Backend) DoDBOperation(ctx context.Context, op Operation, table, typeName string, obj any, cols []*Column) error {
	stmt, err := be.BuildStatement(op, table, typeName, obj, cols)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	if _, err := be.ExecuteNonSelectStatement(ctx, stmt); err != nil {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	return nil
}

// ObjectIsInDB reports whether a row with obj's primary key exists.
func (be *Backend) ObjectIsInDB(ctx context.Context, table, typeName string, obj any, cols []*Column) (bool, error) {
	key, err := keyPairs(typeName, obj, cols)
	if err != nil {
		return false, err
	}
	stmt := be.CreateStatementFromSQL(fmt.Sprintf("SELECT %s FROM %s", key[0].Column, table))
	stmt.AddWhereCond(typeName, key)
	res, err := be.ExecuteSelectStatement(ctx, stmt)
	if err != nil {
		return false, err
	}
	found := res.Next()
	if err := res.Err(); err != nil {
		return false, err
	}
	return found, res.Close()
}

// LoadObject applies every column of cols to obj from row.
func (be *Backend) LoadObject(row db.Row, typeName string, obj any, cols []*Column) {
	for _, c := range cols {
		c.Load(be.book, row, typeName, obj)
	}
}

// LoadGUID reads the guid column of row.
func (be *Backend) LoadGUID(row db.Row) (guid.GUID, error) {
	s, err := row.GetString("guid")
	if err != nil {
		return guid.Zero, err
	}
	return guid.Parse(s)
}

// AppendGUIDsToSQL writes the quoted GUIDs of insts as a comma-separated
// list and returns how many it wrote.
func (be *Backend) AppendGUIDsToSQL(sb *strings.Builder, insts []model.Instance) int {
	for i, inst := range insts {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(be.QuoteString(inst.GUID().String()))
	}
	return len(insts)
}

// LoadSlots batch-loads the slots of insts when a slot store is registered.
func (be *Backend) LoadSlots(ctx context.Context, insts []model.Instance) error {
	if be.slots == nil || len(insts) == 0 {
		return nil
	}
	return be.slots.LoadSlots(ctx, be, insts)
}

// SaveSlots writes inst's slots when a slot store is registered.
func (be *Backend) SaveSlots(ctx context.Context, inst model.Instance) error {
	if be.slots == nil {
		return nil
	}
	return be.slots.SaveSlots(ctx, be, inst)
}

// DeleteSlots removes inst's slots when a slot store is registered.
func (be *Backend) DeleteSlots(ctx context.Context, inst model.Instance) error {
	if be.slots == nil {
		return nil
	}
	return be.slots.DeleteSlots(ctx, be, inst)
}

// WriteInstances commits every instance of ob's type that passes
// shouldSave, stopping at the first failure.
func (be *Backend) WriteInstances(ctx context.Context, ob ObjectBackend, shouldSave func(model.Instance) bool) error {
	var err error
	be.book.ForEach(ob.TypeName(), func(inst model.Instance) bool {
		if shouldSave != nil && !shouldSave(inst) {
			return true
		}
		err = ob.Commit(ctx, be, inst)
		return err == nil
	})
	return err
}
