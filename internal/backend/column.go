// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"reflect"

	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

// Kind is the logical type of a column. The set is closed; every kind has
// an entry in the dispatch table in column_kinds.go.
type Kind int

const (
	KindString Kind = iota
	KindGUID
	KindInt
	KindInt64
	KindDateTime
	KindDate
	KindNumeric
	KindDouble
	KindBoolean
	KindAccountRef
	KindBudgetRef
	KindCommodityRef
	KindLotRef
	KindTxRef
	KindAddress
	KindBillTermRef
	KindInvoiceRef
	KindOrderRef
	KindOwnerRef
	KindTaxTableRef

	kindCount
)

var kindNames = [kindCount]string{
	KindString:       "string",
	KindGUID:         "guid",
	KindInt:          "int",
	KindInt64:        "int64",
	KindDateTime:     "datetime",
	KindDate:         "date",
	KindNumeric:      "numeric",
	KindDouble:       "double",
	KindBoolean:      "boolean",
	KindAccountRef:   "account",
	KindBudgetRef:    "budget",
	KindCommodityRef: "commodity",
	KindLotRef:       "lot",
	KindTxRef:        "transaction",
	KindAddress:      "address",
	KindBillTermRef:  "billterm",
	KindInvoiceRef:   "invoice",
	KindOrderRef:     "order",
	KindOwnerRef:     "owner",
	KindTaxTableRef:  "taxtable",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Flag is a set of column constraints.
type Flag uint8

const (
	FlagPrimaryKey Flag = 1 << iota
	FlagNotNull
	FlagUnique
	FlagAutoInc

	NoFlags Flag = 0
)

// Getter reads a column's value from an object. ok is false when the
// object has no value to write.
type Getter func(obj any) (v any, ok bool)

// Setter writes a loaded value into an object.
type Setter func(obj any, v any) error

// accessor is how a column reaches its field: by property name, through a
// getter/setter pair, or not at all for autoincrement columns.
type accessor interface {
	get(obj any) (any, bool)
	set(obj any, v any) error
}

type namedProperty string

func (p namedProperty) get(obj any) (any, bool) {
	pa, ok := obj.(model.PropertyAccessor)
	if !ok {
		return nil, false
	}
	return pa.Property(string(p))
}

func (p namedProperty) set(obj any, v any) error {
	pa, ok := obj.(model.PropertyAccessor)
	if !ok {
		return model.ErrUnknownProperty
	}
	return pa.SetProperty(string(p), v)
}

type funcPair struct {
	getter Getter
	setter Setter
}

func (f funcPair) get(obj any) (any, bool) {
	if f.getter == nil {
		return nil, false
	}
	return f.getter(obj)
}

func (f funcPair) set(obj any, v any) error {
	if f.setter == nil {
		return nil
	}
	return f.setter(obj, v)
}

// nullAccessor belongs to autoincrement columns: the database owns the value.
type nullAccessor struct{}

func (nullAccessor) get(any) (any, bool) { return nil, false }
func (nullAccessor) set(any, any) error  { return nil }

// Column maps one object field onto one or more SQL columns.
type Column struct {
	name   string
	kind   Kind
	size   int
	flags  Flag
	access accessor
}

// NewColumn describes a column reached through the object's named property.
func NewColumn(name string, kind Kind, size int, flags Flag, property string) *Column {
	return newColumn(name, kind, size, flags, namedProperty(property))
}

// NewColumnFunc describes a column reached through explicit functions.
// Either function may be nil.
func NewColumnFunc(name string, kind Kind, size int, flags Flag, get Getter, set Setter) *Column {
	return newColumn(name, kind, size, flags, funcPair{getter: get, setter: set})
}

func newColumn(name string, kind Kind, size int, flags Flag, acc accessor) *Column {
	if flags&FlagAutoInc != 0 {
		acc = nullAccessor{}
	}
	return &Column{name: name, kind: kind, size: size, flags: flags, access: acc}
}

func (c *Column) Name() string       { return c.name }
func (c *Column) Kind() Kind         { return c.kind }
func (c *Column) Size() int          { return c.size }
func (c *Column) Flags() Flag        { return c.flags }
func (c *Column) IsPrimaryKey() bool { return c.flags&FlagPrimaryKey != 0 }
func (c *Column) IsAutoInc() bool    { return c.flags&FlagAutoInc != 0 }
func (c *Column) IsNotNull() bool    { return c.flags&FlagNotNull != 0 }

// Load reads the column from row and stores it in obj. Missing or
// unconvertible values leave the field untouched.
func (c *Column) Load(book *model.Book, row db.Row, typeName string, obj any) {
	kindTable[c.kind].load(c, book, row, typeName, obj)
}

// AddToTable appends the physical columns this column expands to.
func (c *Column) AddToTable(cols []db.ColumnInfo) []db.ColumnInfo {
	return kindTable[c.kind].addToTable(c, cols)
}

// AddToQuery appends (column, value) pairs for obj's current value.
// Autoincrement columns contribute nothing.
func (c *Column) AddToQuery(typeName string, obj any, pairs []db.Pair) []db.Pair {
	if c.IsAutoInc() {
		return pairs
	}
	return kindTable[c.kind].addToQuery(c, typeName, obj, pairs)
}

// PhysicalNames returns the SQL column names this column expands to.
func (c *Column) PhysicalNames() []string {
	infos := c.AddToTable(nil)
	names := make([]string, len(infos))
	for i, ci := range infos {
		names[i] = ci.Name
	}
	return names
}

// value returns obj's current value for the column, treating typed nil
// pointers as absent.
func (c *Column) value(obj any) (any, bool) {
	v, ok := c.access.get(obj)
	if !ok || v == nil {
		return nil, false
	}
	if rv := reflect.ValueOf(v); (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil, false
	}
	return v, true
}

func (c *Column) store(typeName string, obj, v any) {
	if err := c.access.set(obj, v); err != nil {
		logging.Warnf("%s.%s: cannot set loaded value: %v", typeName, c.name, err)
	}
}

func (c *Column) info(name string, t db.BasicType, size int) db.ColumnInfo {
	return db.ColumnInfo{
		Name:       name,
		Type:       t,
		Size:       size,
		Unicode:    t == db.TypeString,
		AutoInc:    c.IsAutoInc(),
		PrimaryKey: c.IsPrimaryKey(),
		NotNull:    c.IsNotNull(),
	}
}

// Columns expands cols to their physical column descriptions.
func Columns(cols []*Column) []db.ColumnInfo {
	var infos []db.ColumnInfo
	for _, c := range cols {
		infos = c.AddToTable(infos)
	}
	return infos
}
