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
	lotTable   = "lots"
	lotVersion = 2
)

var lotColumns = []*backend.Column{
	backend.NewColumn("guid", backend.KindGUID, 0, backend.FlagPrimaryKey|backend.FlagNotNull, "guid"),
	backend.NewColumn("account_guid", backend.KindAccountRef, 0, backend.NoFlags, "account"),
	backend.NewColumn("is_closed", backend.KindBoolean, 0, backend.FlagNotNull, "is-closed"),
}

// Lots persists model.Lot.
type Lots struct {
	*backend.Base
}

func NewLots() *Lots {
	return &Lots{backend.NewBase(lotVersion, model.TypeLot, lotTable, lotColumns,
		backend.WithFactory(func(b *model.Book) model.Instance { return model.NewLot(b) }))}
}

// Write saves every lot.
func (l *Lots) Write(ctx context.Context, be *backend.Backend) error {
	return be.WriteInstances(ctx, l, nil)
}
