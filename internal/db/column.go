// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// BasicType is the engine-neutral type of a physical column.
type BasicType int

const (
	TypeString BasicType = iota
	TypeInt
	TypeInt64
	TypeDate
	TypeDouble
	TypeDateTime
)

func (t BasicType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeDate:
		return "date"
	case TypeDouble:
		return "double"
	case TypeDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// ColumnInfo describes one physical column for DDL.
type ColumnInfo struct {
	Name       string
	Type       BasicType
	Size       int
	Unicode    bool
	AutoInc    bool
	PrimaryKey bool
	NotNull    bool
}

// Pair is a column name and the canonical string form of its value.
// Null pairs render as SQL NULL regardless of Value.
type Pair struct {
	Column string
	Value  string
	Null   bool
}

// NullPair returns a pair that writes NULL into col.
func NullPair(col string) Pair {
	return Pair{Column: col, Null: true}
}
