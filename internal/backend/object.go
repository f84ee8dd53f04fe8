// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"context"
	"fmt"

	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

// ObjectBackend persists one object type in one table.
type ObjectBackend interface {
	TypeName() string
	TableName() string
	Version() int
	IsVersion(v int) bool
	Columns() []*Column

	// CreateTables creates or upgrades the table to the compiled version.
	CreateTables(ctx context.Context, be *Backend) error
	// LoadAll reads every row into the book.
	LoadAll(ctx context.Context, be *Backend) error
	// Commit writes one object with exactly one INSERT, UPDATE or DELETE.
	Commit(ctx context.Context, be *Backend, inst model.Instance) error
	// Write commits every savable instance of the type.
	Write(ctx context.Context, be *Backend) error
}

// SlotStore persists the key/value slots attached to objects. The
// Backend finds it among the registered Object Backends.
type SlotStore interface {
	LoadSlots(ctx context.Context, be *Backend, insts []model.Instance) error
	SaveSlots(ctx context.Context, be *Backend, inst model.Instance) error
	DeleteSlots(ctx context.Context, be *Backend, inst model.Instance) error
}

// Index is a secondary index created together with a fresh table.
type Index struct {
	Name    string
	Columns []string
}

// Base implements ObjectBackend for a table of model instances. Per-type
// backends embed it and override LoadAll or Write when they need to.
type Base struct {
	version   int
	typeName  string
	tableName string
	columns   []*Column
	indexes   []Index
	factory   func(*model.Book) model.Instance
}

// BaseOption configures a Base.
type BaseOption func(*Base)

// WithIndex adds a secondary index.
func WithIndex(name string, columns ...string) BaseOption {
	return func(b *Base) { b.indexes = append(b.indexes, Index{Name: name, Columns: columns}) }
}

// WithFactory sets the constructor LoadAll uses for rows whose GUID is not
// yet in the book.
func WithFactory(fn func(*model.Book) model.Instance) BaseOption {
	return func(b *Base) { b.factory = fn }
}

// NewBase describes table at compiled version for typeName. The column list
// must not be modified afterwards.
func NewBase(version int, typeName, table string, cols []*Column, opts ...BaseOption) *Base {
	b := &Base{version: version, typeName: typeName, tableName: table, columns: cols}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) TypeName() string     { return b.typeName }
func (b *Base) TableName() string    { return b.tableName }
func (b *Base) Version() int         { return b.version }
func (b *Base) IsVersion(v int) bool { return v == b.version }
func (b *Base) Columns() []*Column   { return b.columns }
func (b *Base) Indexes() []Index     { return b.indexes }

// CreateTables creates the table when it has no stored version, adds the
// missing columns when the stored version is older, and leaves newer or
// current tables alone.
func (b *Base) CreateTables(ctx context.Context, be *Backend) error {
	stored := be.TableVersion(b.tableName)
	switch {
	case stored == 0:
		if err := be.CreateVersionedTable(ctx, b.tableName, b.version, b.columns); err != nil {
			return err
		}
		for _, idx := range b.indexes {
			if err := be.CreateIndex(ctx, idx.Name, b.tableName, idx.Columns...); err != nil {
				return err
			}
		}
	case stored < b.version:
		if _, err := be.AddMissingColumns(ctx, b.tableName, b.columns); err != nil {
			return err
		}
		if err := be.SetTableVersion(ctx, b.tableName, b.version); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll selects the whole table and hydrates one instance per row,
// then loads the slots of everything it touched.
func (b *Base) LoadAll(ctx context.Context, be *Backend) error {
	if b.factory == nil {
		return fmt.Errorf("%s: no factory to create instances", b.typeName)
	}
	insts, err := b.LoadRows(ctx, be, "SELECT * FROM "+b.tableName, nil)
	if err != nil {
		return err
	}
	return be.LoadSlots(ctx, insts)
}

// LoadRows runs query and hydrates one instance per row. each, when set,
// sees every row after its instance is loaded.
func (b *Base) LoadRows(ctx context.Context, be *Backend, query string, each func(db.Row, model.Instance)) ([]model.Instance, error) {
	res, err := be.ExecuteSelectStatement(ctx, be.CreateStatementFromSQL(query))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", b.tableName, err)
	}
	var insts []model.Instance
	for row := range db.Rows(res) {
		inst := b.loadRow(be, row)
		if inst == nil {
			continue
		}
		if each != nil {
			each(row, inst)
		}
		insts = append(insts, inst)
	}
	if err := res.Err(); err != nil {
		return insts, fmt.Errorf("load %s: %w", b.tableName, err)
	}
	return insts, nil
}

func (b *Base) loadRow(be *Backend, row db.Row) model.Instance {
	g, err := be.LoadGUID(row)
	if err != nil {
		logging.Debugf("%s: skipping row without usable guid: %v", b.tableName, err)
		return nil
	}
	inst := be.Book().Lookup(b.typeName, g)
	if inst == nil {
		inst = b.factory(be.Book())
	}
	be.LoadObject(row, b.typeName, inst, b.columns)
	inst.MarkClean()
	return inst
}

// Commit deletes destroyed objects, inserts into a pristine database and
// otherwise updates or inserts depending on whether the primary key is
// already present. Slots follow the object.
func (b *Base) Commit(ctx context.Context, be *Backend, inst model.Instance) error {
	var op Operation
	switch {
	case inst.IsDestroyed():
		op = OpDelete
	case be.Pristine():
		op = OpInsert
	default:
		exists, err := be.ObjectIsInDB(ctx, b.tableName, b.typeName, inst, b.columns)
		if err != nil {
			return err
		}
		op = OpInsert
		if exists {
			op = OpUpdate
		}
	}
	if err := be.DoDBOperation(ctx, op, b.tableName, b.typeName, inst, b.columns); err != nil {
		return err
	}
	if op == OpDelete {
		return be.DeleteSlots(ctx, inst)
	}
	return be.SaveSlots(ctx, inst)
}

// Write does nothing; types that are saved in bulk override it.
func (b *Base) Write(context.Context, *Backend) error { return nil }
