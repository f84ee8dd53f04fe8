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
	commodityTable   = "commodities"
	commodityVersion = 1
	commodityMaxLen  = 2048
)

var commodityColumns = []*backend.Column{
	backend.NewColumn("guid", backend.KindGUID, 0, backend.FlagPrimaryKey|backend.FlagNotNull, "guid"),
	backend.NewColumn("namespace", backend.KindString, commodityMaxLen, backend.FlagNotNull, "namespace"),
	backend.NewColumn("mnemonic", backend.KindString, commodityMaxLen, backend.FlagNotNull, "mnemonic"),
	backend.NewColumn("fullname", backend.KindString, commodityMaxLen, backend.NoFlags, "fullname"),
	backend.NewColumn("cusip", backend.KindString, commodityMaxLen, backend.NoFlags, "cusip"),
	backend.NewColumn("fraction", backend.KindInt, 0, backend.FlagNotNull, "fraction"),
	backend.NewColumn("quote_flag", backend.KindBoolean, 0, backend.FlagNotNull, "quote-flag"),
	backend.NewColumn("quote_source", backend.KindString, commodityMaxLen, backend.NoFlags, "quote-source"),
	backend.NewColumn("quote_tz", backend.KindString, commodityMaxLen, backend.NoFlags, "quote-tz"),
}

// Commodities persists model.Commodity.
type Commodities struct {
	*backend.Base
}

func NewCommodities() *Commodities {
	return &Commodities{backend.NewBase(commodityVersion, model.TypeCommodity, commodityTable, commodityColumns,
		backend.WithFactory(func(b *model.Book) model.Instance { return model.NewCommodity(b) }))}
}

// Write saves every commodity outside the template namespace.
func (c *Commodities) Write(ctx context.Context, be *backend.Backend) error {
	return be.WriteInstances(ctx, c, func(inst model.Instance) bool {
		cm, ok := inst.(*model.Commodity)
		return ok && cm.Namespace() != "template"
	})
}
