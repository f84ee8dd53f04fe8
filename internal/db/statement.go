// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "strings"

// Statement is SQL text built for one connection. Literal values are
// embedded already quoted, so statements carry no bind arguments.
type Statement struct {
	sql   strings.Builder
	quote func(string) string
}

// NewStatement starts a statement with sql, quoting WHERE values with quote.
func NewStatement(sql string, quote func(string) string) *Statement {
	st := &Statement{quote: quote}
	st.sql.WriteString(sql)
	return st
}

// SQL returns the statement text.
func (s *Statement) SQL() string { return s.sql.String() }

func (s *Statement) String() string { return s.SQL() }

// AddWhereCond appends a WHERE clause matching every pair.
// typeName is informational only.
func (s *Statement) AddWhereCond(typeName string, pairs []Pair) {
	if len(pairs) == 0 {
		return
	}
	s.sql.WriteString(" WHERE ")
	for i, p := range pairs {
		if i > 0 {
			s.sql.WriteString(" AND ")
		}
		s.sql.WriteString(p.Column)
		if p.Null {
			s.sql.WriteString(" IS NULL")
			continue
		}
		s.sql.WriteString(" = ")
		s.sql.WriteString(s.quote(p.Value))
	}
}
