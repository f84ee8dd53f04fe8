// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Connection is the engine-independent contract used by the backend core.
// Failures are returned as errors; DBError reports how the last failure
// was classified.
type Connection interface {
	ExecuteSelect(ctx context.Context, stmt *Statement) (*Result, error)
	ExecuteNonSelect(ctx context.Context, stmt *Statement) (int64, error)
	CreateStatementFromSQL(sql string) *Statement
	DoesTableExist(ctx context.Context, name string) (bool, error)
	BeginTransaction(ctx context.Context) error
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	CreateTable(ctx context.Context, name string, cols []ColumnInfo) error
	CreateIndex(ctx context.Context, index, table string, cols []string) error
	AddColumnsToTable(ctx context.Context, table string, cols []ColumnInfo) error
	DropTable(ctx context.Context, name string) error
	RenameTable(ctx context.Context, from, to string) error
	QuoteString(s string) string
	DBError() ErrorCode
	SetError(code ErrorCode, repeat int, retry bool)
	Verify(ctx context.Context) error
	RetryConnection(ctx context.Context, msg string) error
	Close() error
}

var _ Connection = (*Conn)(nil)

// engine holds what differs between SQL engines.
type engine struct {
	name        string
	driver      string
	columnType  func(ColumnInfo) string
	autoIncKey  string
	tableSuffix string
	tableExists func(quotedName string) string
	maintain    func(ctx context.Context, c *Conn) error
}

// Conn is a Connection backed by bun over database/sql.
type Conn struct {
	eng   *engine
	sqlDB *sql.DB
	bun   *bun.DB
	tx    *bun.Tx

	errCode   ErrorCode
	errRepeat int
	retry     bool

	retryAttempts int
	retryDelay    time.Duration
	// reopen dials a fresh pool; nil when the Conn wraps a caller's *sql.DB.
	reopen func(ctx context.Context) (*sql.DB, error)
}

// Type returns the engine name: "sqlite", "postgres" or "mysql".
func (c *Conn) Type() string { return c.eng.name }

// BunDB exposes the underlying bun handle.
func (c *Conn) BunDB() *bun.DB { return c.bun }

// InTransaction reports whether a transaction is pinned.
func (c *Conn) InTransaction() bool { return c.tx != nil }

// idb returns the executor for the next statement: the pinned transaction
// if there is one, the pool otherwise.
func (c *Conn) idb() bun.IDB {
	if c.tx != nil {
		return c.tx
	}
	return c.bun
}

func (c *Conn) fail(err error) {
	code := classify(err)
	if code == c.errCode {
		c.errRepeat++
	} else {
		c.errRepeat = 0
	}
	c.errCode = code
	c.retry = code == ErrConnLost
}

func (c *Conn) ok() {
	c.errCode = ErrNone
	c.errRepeat = 0
	c.retry = false
}

// CreateStatementFromSQL wraps sql in a Statement quoting with this connection's dialect.
func (c *Conn) CreateStatementFromSQL(sql string) *Statement {
	return NewStatement(sql, c.QuoteString)
}

// ExecuteSelect runs a query and returns its rows. The caller must close
// the Result before issuing further statements on a single-connection pool.
func (c *Conn) ExecuteSelect(ctx context.Context, stmt *Statement) (*Result, error) {
	if c.bun == nil {
		return nil, ErrNoConnection
	}
	dbLogf("select: %s", stmt.SQL())
	rows, err := c.idb().QueryContext(ctx, stmt.SQL())
	if err != nil {
		c.fail(err)
		return nil, fmt.Errorf("select failed: %w", err)
	}
	res, err := newResult(rows)
	if err != nil {
		c.fail(err)
		return nil, fmt.Errorf("select failed: %w", err)
	}
	c.ok()
	return res, nil
}

// ExecuteNonSelect runs a statement and returns the number of affected rows.
// Constraint violations are reported as ErrDuplicate.
func (c *Conn) ExecuteNonSelect(ctx context.Context, stmt *Statement) (int64, error) {
	if c.bun == nil {
		return 0, ErrNoConnection
	}
	dbLogf("exec: %s", stmt.SQL())
	n, err := execRaw(ctx, c.idb(), stmt.SQL())
	if err != nil {
		c.fail(err)
		if mapped := MapDBError(err); errors.Is(mapped, ErrDuplicate) {
			return 0, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return 0, fmt.Errorf("statement failed: %w", err)
	}
	c.ok()
	return n, nil
}

// DoesTableExist looks name up in the engine's catalog.
func (c *Conn) DoesTableExist(ctx context.Context, name string) (bool, error) {
	if c.bun == nil {
		return false, ErrNoConnection
	}
	var names []string
	err := QueryRawInto(ctx, c.idb(), &names, c.eng.tableExists(c.QuoteString(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		c.fail(err)
		return false, fmt.Errorf("table lookup for %s failed: %w", name, err)
	}
	return len(names) > 0, nil
}

// BeginTransaction pins a transaction on the connection.
func (c *Conn) BeginTransaction(ctx context.Context) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if c.tx != nil {
		return errors.New("transaction already in progress")
	}
	tx, err := c.bun.BeginTx(ctx, nil)
	if err != nil {
		c.fail(err)
		return fmt.Errorf("begin transaction: %w", err)
	}
	c.tx = &tx
	dbLogf("transaction started")
	return nil
}

// CommitTransaction commits and unpins the current transaction.
func (c *Conn) CommitTransaction(ctx context.Context) error {
	if c.tx == nil {
		return ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		c.fail(err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	dbLogf("transaction committed")
	return nil
}

// RollbackTransaction aborts and unpins the current transaction.
func (c *Conn) RollbackTransaction(ctx context.Context) error {
	if c.tx == nil {
		return ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		c.fail(err)
		return fmt.Errorf("rollback transaction: %w", err)
	}
	dbLogf("transaction rolled back")
	return nil
}

func (c *Conn) quoteIdent(name string) string {
	q := "\""
	if c.bun != nil {
		q = string(c.bun.Dialect().IdentQuote())
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// columnDef renders one column definition. Added columns never carry
// NOT NULL since existing rows have no value for them.
func (c *Conn) columnDef(ci ColumnInfo, adding bool) string {
	if ci.AutoInc {
		return c.quoteIdent(ci.Name) + " " + c.eng.autoIncKey
	}
	var b strings.Builder
	b.WriteString(c.quoteIdent(ci.Name))
	b.WriteByte(' ')
	b.WriteString(c.eng.columnType(ci))
	if ci.PrimaryKey && !adding {
		b.WriteString(" PRIMARY KEY")
	}
	if ci.NotNull && !adding {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// CreateTable issues CREATE TABLE for cols in order.
func (c *Conn) CreateTable(ctx context.Context, name string, cols []ColumnInfo) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if len(cols) == 0 {
		return fmt.Errorf("create table %s: no columns", name)
	}
	defs := make([]string, len(cols))
	for i, ci := range cols {
		defs[i] = c.columnDef(ci, false)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)%s", c.quoteIdent(name), strings.Join(defs, ", "), c.eng.tableSuffix)
	dbLogf("ddl: %s", ddl)
	if _, err := execRaw(ctx, c.idb(), ddl); err != nil {
		c.fail(err)
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}

// CreateIndex creates a plain index over cols.
func (c *Conn) CreateIndex(ctx context.Context, index, table string, cols []string) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if _, err := c.idb().NewCreateIndex().Table(table).Index(index).Column(cols...).Exec(ctx); err != nil {
		c.fail(err)
		return fmt.Errorf("create index %s on %s: %w", index, table, err)
	}
	return nil
}

// AddColumnsToTable adds each column with its own ALTER TABLE, since
// SQLite accepts only one column per statement.
func (c *Conn) AddColumnsToTable(ctx context.Context, table string, cols []ColumnInfo) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	for _, ci := range cols {
		if _, err := c.idb().NewAddColumn().Table(table).ColumnExpr(c.columnDef(ci, true)).Exec(ctx); err != nil {
			c.fail(err)
			return fmt.Errorf("add column %s to %s: %w", ci.Name, table, err)
		}
	}
	return nil
}

// DropTable drops name if it exists.
func (c *Conn) DropTable(ctx context.Context, name string) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if _, err := c.idb().NewDropTable().Table(name).IfExists().Exec(ctx); err != nil {
		c.fail(err)
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

// RenameTable renames from to to.
func (c *Conn) RenameTable(ctx context.Context, from, to string) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	ddl := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", c.quoteIdent(from), c.quoteIdent(to))
	if _, err := execRaw(ctx, c.idb(), ddl); err != nil {
		c.fail(err)
		return fmt.Errorf("rename table %s: %w", from, err)
	}
	return nil
}

// QuoteString returns s as a SQL string literal for this engine.
func (c *Conn) QuoteString(s string) string {
	if c.bun == nil {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return string(c.bun.Dialect().AppendString(nil, s))
}

// DBError returns the classification of the last failure.
func (c *Conn) DBError() ErrorCode { return c.errCode }

// SetError records a failure classification, how often it repeated and
// whether a reconnect should be attempted.
func (c *Conn) SetError(code ErrorCode, repeat int, retry bool) {
	c.errCode = code
	c.errRepeat = repeat
	c.retry = retry
}

// ErrorRepeat returns how many consecutive failures had the current code.
func (c *Conn) ErrorRepeat() int { return c.errRepeat }

// ShouldRetry reports whether the last failure asked for a reconnect.
func (c *Conn) ShouldRetry() bool { return c.retry }

// Verify checks that the connection is usable.
func (c *Conn) Verify(ctx context.Context) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if err := c.bun.PingContext(ctx); err != nil {
		c.SetError(ErrConnLost, c.errRepeat+1, true)
		return fmt.Errorf("verify connection: %w", err)
	}
	return nil
}

// RetryConnection re-establishes the connection, trying up to the
// configured number of attempts. A pinned transaction does not survive.
func (c *Conn) RetryConnection(ctx context.Context, msg string) error {
	dbLogf("retrying connection: %s", msg)
	c.tx = nil
	attempts := max(c.retryAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = c.reconnect(ctx); lastErr == nil {
			c.ok()
			dbLogf("reconnected after %d attempt(s)", attempt)
			return nil
		}
		c.SetError(ErrConnLost, attempt, true)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	c.SetError(ErrCantConnect, attempts, false)
	return fmt.Errorf("reconnect failed after %d attempts: %w", attempts, lastErr)
}

func (c *Conn) reconnect(ctx context.Context) error {
	if c.reopen == nil {
		if c.bun == nil {
			return ErrNoConnection
		}
		return c.bun.PingContext(ctx)
	}
	sqlDB, err := c.reopen(ctx)
	if err != nil {
		return err
	}
	if c.bun != nil {
		_ = c.bun.Close()
	}
	c.sqlDB = sqlDB
	c.bun = createBunDB(sqlDB, c.eng.name)
	return nil
}

// Maintain runs the engine's housekeeping: VACUUM and an integrity check
// for SQLite, VACUUM ANALYZE for PostgreSQL, OPTIMIZE TABLE for MySQL.
func (c *Conn) Maintain(ctx context.Context) error {
	if c.bun == nil {
		return ErrNoConnection
	}
	if c.tx != nil {
		return errors.New("maintenance cannot run inside a transaction")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return c.eng.maintain(ctx, c)
}

// Close rolls back any pinned transaction and closes the pool.
func (c *Conn) Close() error {
	if c.bun == nil {
		return nil
	}
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	err := c.bun.Close()
	c.bun = nil
	c.sqlDB = nil
	return err
}
