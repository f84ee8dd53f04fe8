// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil opens throwaway SQLite databases for tests.
package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/ledgerbase/internal/db"
)

// OpenMemory opens a private in-memory SQLite database named after the
// test. It is closed when the test ends.
func OpenMemory(t testing.TB) *db.Conn {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return open(t, "file:"+name+"?mode=memory&cache=shared")
}

// TempFile returns the path of a SQLite file in the test's temp dir.
func TempFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "book.sqlite")
}

// OpenFile opens the SQLite database at path. Several connections to the
// same path see the same data, which tests use to simulate a restart.
func OpenFile(t testing.TB, path string) *db.Conn {
	t.Helper()
	return open(t, path)
}

func open(t testing.TB, dsn string) *db.Conn {
	t.Helper()
	c, err := db.Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", dsn, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
