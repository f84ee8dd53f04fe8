// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNoConnection is returned by operations on a closed or never opened connection.
	ErrNoConnection = errors.New("no database connection")
	// ErrNoSuchColumn is returned by Row getters for a column the result does not carry.
	ErrNoSuchColumn = errors.New("no such column")
	// ErrNullValue is returned by Row getters when the column holds SQL NULL.
	ErrNullValue = errors.New("column is NULL")
	// ErrNoTransaction is returned by Commit/RollbackTransaction without a Begin.
	ErrNoTransaction = errors.New("no transaction in progress")
)

// ErrorCode classifies the state of a connection after its last failure.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrCantConnect
	ErrConnLost
	ErrServer
	ErrBadSQL
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrCantConnect:
		return "cannot connect"
	case ErrConnLost:
		return "connection lost"
	case ErrServer:
		return "server error"
	case ErrBadSQL:
		return "bad sql"
	default:
		return "unknown"
	}
}

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). MySQL
// errors are matched by number, everything else by message.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicate
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}

// classify maps a statement error to the ErrorCode recorded on the connection.
func classify(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrNone
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrConnLost
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrServer
	}
	le := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "broken pipe", "connection reset", "bad connection", "server has gone away", "database is closed"} {
		if strings.Contains(le, s) {
			return ErrConnLost
		}
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number >= 2000 {
		return ErrServer
	}
	return ErrBadSQL
}
