// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package objects

import (
	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/model"
)

// RegisterAll registers every Object Backend. Referenced types come first
// so references resolve during a load.
func RegisterAll(reg *backend.Registry) {
	RegisterSlots(reg)
	RegisterCommodities(reg)
	RegisterAccounts(reg)
	RegisterLots(reg)
	RegisterCustomers(reg)
	RegisterOrders(reg)
}

func RegisterSlots(reg *backend.Registry)       { reg.Register(TypeSlots, NewSlots()) }
func RegisterCommodities(reg *backend.Registry) { reg.Register(model.TypeCommodity, NewCommodities()) }
func RegisterAccounts(reg *backend.Registry)    { reg.Register(model.TypeAccount, NewAccounts()) }
func RegisterLots(reg *backend.Registry)        { reg.Register(model.TypeLot, NewLots()) }
func RegisterCustomers(reg *backend.Registry)   { reg.Register(model.TypeCustomer, NewCustomers()) }
func RegisterOrders(reg *backend.Registry)      { reg.Register(model.TypeOrder, NewOrders()) }

// NewRegistry returns a registry holding every Object Backend.
func NewRegistry() *backend.Registry {
	reg := backend.NewRegistry()
	RegisterAll(reg)
	return reg
}
