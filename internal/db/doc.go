// Package db is the engine-independent SQL layer of Ledgerbase.
//
// A Connection executes Statements and returns forward-only Results whose
// Rows are read by column name. Conn is the single implementation, backed by
// bun over database/sql; the per-engine differences (column types, table
// lookup, autoincrement keys) live in small engine descriptors in sqlite.go,
// postgres.go and mysql.go.
//
// Transactions are pinned on the Conn: between BeginTransaction and
// Commit/RollbackTransaction every statement runs on the same bun.Tx.
//
// Testing notes
//   - Use Open(ctx, "sqlite", "file:<name>?mode=memory&cache=shared") for
//     tests that need real engine semantics.
//   - Use NewConn over a go-sqlmock *sql.DB to assert the exact SQL emitted.
package db
