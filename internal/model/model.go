// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the in-memory objects persisted by the SQL backend.
// Only their identity, dirty/destroyed state and property accessors matter to
// the persistence layer; business rules live elsewhere.
package model // import "github.com/toeirei/ledgerbase/internal/model"

import (
	"errors"
	"fmt"

	"github.com/toeirei/ledgerbase/internal/guid"
)

// Type names of the objects known to this package. They double as registry
// keys for the object backends.
const (
	TypeCommodity   = "Commodity"
	TypeAccount     = "Account"
	TypeLot         = "Lot"
	TypeOrder       = "Order"
	TypeBudget      = "Budget"
	TypeTransaction = "Trans"
	TypeBillTerm    = "BillTerm"
	TypeInvoice     = "Invoice"
	TypeTaxTable    = "TaxTable"
	TypeCustomer    = "Customer"
	TypeJob         = "Job"
	TypeVendor      = "Vendor"
	TypeEmployee    = "Employee"
)

var (
	// ErrUnknownProperty is returned by SetProperty for names the type does not define.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrPropertyType is returned when a property value has the wrong Go type.
	ErrPropertyType = errors.New("property type mismatch")
)

// Instance is a persistable object living in a Book.
type Instance interface {
	GUID() guid.GUID
	SetGUID(g guid.GUID)
	TypeName() string
	Book() *Book
	IsDirty() bool
	MarkDirty()
	MarkClean()
	IsDestroyed() bool
	MarkDestroyed()
	Slots() *Frame

	base() *Base
}

// PropertyAccessor exposes an object's fields by name. It is the generic
// access path used by named-property column descriptors.
type PropertyAccessor interface {
	Property(name string) (any, bool)
	SetProperty(name string, value any) error
}

// Base carries the identity and state shared by every Instance. Concrete
// types embed it and are attached to a book with Attach.
type Base struct {
	guid      guid.GUID
	typeName  string
	book      *Book
	dirty     bool
	destroyed bool
	slots     Frame
}

func (b *Base) base() *Base { return b }

// GUID returns the object's identifier.
func (b *Base) GUID() guid.GUID { return b.guid }

// SetGUID changes the identifier, re-keying the object in its book.
func (b *Base) SetGUID(g guid.GUID) {
	if g == b.guid {
		return
	}
	if b.book != nil {
		b.book.rekey(b.typeName, b.guid, g)
	}
	b.guid = g
	b.dirty = true
}

// TypeName returns the registry type name.
func (b *Base) TypeName() string { return b.typeName }

// Book returns the owning book.
func (b *Base) Book() *Book { return b.book }

// IsDirty reports unsaved changes.
func (b *Base) IsDirty() bool { return b.dirty }

// MarkDirty flags unsaved changes.
func (b *Base) MarkDirty() { b.dirty = true }

// MarkClean records that the object matches its persisted state.
func (b *Base) MarkClean() { b.dirty = false }

// IsDestroyed reports whether the object is scheduled for deletion.
func (b *Base) IsDestroyed() bool { return b.destroyed }

// MarkDestroyed schedules the object for deletion on the next commit.
func (b *Base) MarkDestroyed() {
	b.destroyed = true
	b.dirty = true
}

// Slots returns the object's key/value frame.
func (b *Base) Slots() *Frame { return &b.slots }

// SetSlot stores a key/value slot and marks the object dirty.
func (b *Base) SetSlot(key string, value any) {
	b.slots.Set(key, value)
	b.dirty = true
}

func (b *Base) property(name string) (any, bool) {
	if name == "guid" {
		return b.guid, true
	}
	return nil, false
}

func (b *Base) setProperty(name string, value any) error {
	if name != "guid" {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	g, ok := value.(guid.GUID)
	if !ok {
		return fmt.Errorf("%w: guid wants guid.GUID, got %T", ErrPropertyType, value)
	}
	b.SetGUID(g)
	return nil
}

// Attach initialises inst's Base with a fresh GUID and inserts it in book.
// Types outside this package embed Base and call Attach from their
// constructors.
func Attach(book *Book, typeName string, inst Instance) {
	b := inst.base()
	b.guid = guid.New()
	b.typeName = typeName
	b.book = book
	b.dirty = true
	if book != nil {
		book.insert(inst)
	}
}

// assign stores value into dst when it has dst's type.
func assign[T any](dst *T, name string, value any) error {
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("%w: %s wants %T, got %T", ErrPropertyType, name, *dst, value)
	}
	*dst = v
	return nil
}

// assignRef stores an Instance-typed value (or nil) into a typed pointer.
func assignRef[T Instance](dst *T, name string, value any) error {
	var zero T
	if value == nil {
		*dst = zero
		return nil
	}
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("%w: %s wants %T, got %T", ErrPropertyType, name, zero, value)
	}
	*dst = v
	return nil
}
