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
	orderTable   = "orders"
	orderVersion = 1
	orderMaxLen  = 2048
)

// date_closed and owner are nullable: an open order has neither.
var orderColumns = []*backend.Column{
	backend.NewColumn("guid", backend.KindGUID, 0, backend.FlagPrimaryKey|backend.FlagNotNull, "guid"),
	backend.NewColumn("id", backend.KindString, orderMaxLen, backend.FlagNotNull, "id"),
	backend.NewColumn("notes", backend.KindString, orderMaxLen, backend.FlagNotNull, "notes"),
	backend.NewColumn("reference", backend.KindString, orderMaxLen, backend.FlagNotNull, "reference"),
	backend.NewColumn("active", backend.KindBoolean, 0, backend.FlagNotNull, "active"),
	backend.NewColumn("date_opened", backend.KindDateTime, 0, backend.FlagNotNull, "date-opened"),
	backend.NewColumn("date_closed", backend.KindDateTime, 0, backend.NoFlags, "date-closed"),
	backend.NewColumn("owner", backend.KindOwnerRef, 0, backend.NoFlags, "owner"),
}

// Orders persists model.Order.
type Orders struct {
	*backend.Base
}

func NewOrders() *Orders {
	return &Orders{backend.NewBase(orderVersion, model.TypeOrder, orderTable, orderColumns,
		backend.WithFactory(func(b *model.Book) model.Instance { return model.NewOrder(b) }))}
}

// Write saves orders that have an id; an order without one is incomplete.
func (o *Orders) Write(ctx context.Context, be *backend.Backend) error {
	return be.WriteInstances(ctx, o, orderShouldBeSaved)
}

func orderShouldBeSaved(inst model.Instance) bool {
	o, ok := inst.(*model.Order)
	return ok && o.ID() != ""
}
