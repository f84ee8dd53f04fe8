// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package objects

import (
	"context"

	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/model"
)

const (
	customerTable   = "customers"
	customerVersion = 2
	customerMaxLen  = 2048
)

var customerColumns = []*backend.Column{
	backend.NewColumn("guid", backend.KindGUID, 0, backend.FlagPrimaryKey|backend.FlagNotNull, "guid"),
	backend.NewColumn("name", backend.KindString, customerMaxLen, backend.FlagNotNull, "name"),
	backend.NewColumn("id", backend.KindString, customerMaxLen, backend.FlagNotNull, "id"),
	backend.NewColumn("notes", backend.KindString, customerMaxLen, backend.FlagNotNull, "notes"),
	backend.NewColumn("active", backend.KindBoolean, 0, backend.FlagNotNull, "active"),
	backend.NewColumn("credit", backend.KindNumeric, 0, backend.FlagNotNull, "credit"),
	backend.NewColumn("addr", backend.KindAddress, 0, backend.NoFlags, "addr"),
	backend.NewColumn("shipaddr", backend.KindAddress, 0, backend.NoFlags, "shipaddr"),
}

// Customers persists model.Customer.
type Customers struct {
	*backend.Base
}

func NewCustomers() *Customers {
	return &Customers{backend.NewBase(customerVersion, model.TypeCustomer, customerTable, customerColumns,
		backend.WithFactory(func(b *model.Book) model.Instance { return model.NewCustomer(b) }))}
}

// Write saves customers that have an id.
func (c *Customers) Write(ctx context.Context, be *backend.Backend) error {
	return be.WriteInstances(ctx, c, func(inst model.Instance) bool {
		cu, ok := inst.(*model.Customer)
		return ok && cu.ID() != ""
	})
}
