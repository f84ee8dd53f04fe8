// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backend maps model objects onto SQL tables.
//
// A Backend owns one db.Connection and the schema version of every table.
// Each object type is persisted by an ObjectBackend described by an ordered
// list of Columns; the Registry passed to New decides which types exist.
package backend // import "github.com/toeirei/ledgerbase/internal/backend"

import (
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/model"
)

// Backend is the persistence core for one open database. It is not safe
// for concurrent use.
type Backend struct {
	conn     db.Connection
	book     *model.Book
	registry *Registry
	slots    SlotStore

	pristine bool
	loading  bool
	inQuery  bool
	txDepth  int

	versions map[string]int
	recorded map[string]bool // tables with a row in the versions table
	pending  map[string]int  // version writes that failed
}

// New returns a Backend bound to conn and book. The first registered
// Object Backend that also implements SlotStore stores object slots.
func New(conn db.Connection, book *model.Book, reg *Registry) *Backend {
	if reg == nil {
		reg = NewRegistry()
	}
	be := &Backend{conn: conn, book: book, registry: reg}
	for _, ob := range reg.All() {
		if s, ok := ob.(SlotStore); ok {
			be.slots = s
			break
		}
	}
	return be
}

// Connect replaces the connection, which may be nil, and discards the
// version information read from the previous one.
func (be *Backend) Connect(conn db.Connection) {
	be.conn = conn
	be.versions = nil
	be.recorded = nil
	be.pending = nil
	be.txDepth = 0
}

func (be *Backend) Conn() db.Connection   { return be.conn }
func (be *Backend) Book() *model.Book     { return be.book }
func (be *Backend) Registry() *Registry   { return be.registry }
func (be *Backend) Pristine() bool        { return be.pristine }
func (be *Backend) Loading() bool         { return be.loading }
func (be *Backend) InQuery() bool         { return be.inQuery }
func (be *Backend) SetBook(b *model.Book) { be.book = b }

// SetLoading marks a bulk load in progress; commits only mark objects clean.
func (be *Backend) SetLoading(v bool) { be.loading = v }

// SetInQuery marks a query in progress; commits only mark objects clean.
func (be *Backend) SetInQuery(v bool) { be.inQuery = v }

// SetSlotStore overrides the slot collaborator found at construction.
func (be *Backend) SetSlotStore(s SlotStore) { be.slots = s }
