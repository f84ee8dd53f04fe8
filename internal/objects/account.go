// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package objects

import (
	"context"

	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

const (
	accountTable   = "accounts"
	accountVersion = 1
	accountMaxLen  = 2048
)

var accountColumns = []*backend.Column{
	backend.NewColumn("guid", backend.KindGUID, 0, backend.FlagPrimaryKey|backend.FlagNotNull, "guid"),
	backend.NewColumn("name", backend.KindString, accountMaxLen, backend.FlagNotNull, "name"),
	backend.NewColumn("account_type", backend.KindString, accountMaxLen, backend.FlagNotNull, "account-type"),
	backend.NewColumn("commodity_guid", backend.KindCommodityRef, 0, backend.NoFlags, "commodity"),
	backend.NewColumn("commodity_scu", backend.KindInt, 0, backend.FlagNotNull, "commodity-scu"),
	backend.NewColumn("non_std_scu", backend.KindBoolean, 0, backend.FlagNotNull, "non-std-scu"),
	backend.NewColumnFunc("parent_guid", backend.KindAccountRef, 0, backend.NoFlags, accountParent, setAccountParent),
	backend.NewColumn("code", backend.KindString, accountMaxLen, backend.NoFlags, "code"),
	backend.NewColumn("description", backend.KindString, accountMaxLen, backend.NoFlags, "description"),
	backend.NewColumn("hidden", backend.KindBoolean, 0, backend.NoFlags, "hidden"),
	backend.NewColumn("placeholder", backend.KindBoolean, 0, backend.NoFlags, "placeholder"),
}

func accountParent(obj any) (any, bool) {
	a, ok := obj.(*model.Account)
	if !ok || a.Parent() == nil {
		return nil, false
	}
	return a.Parent(), true
}

func setAccountParent(obj any, v any) error {
	a, ok := obj.(*model.Account)
	if !ok {
		return model.ErrPropertyType
	}
	p, _ := v.(*model.Account)
	a.SetParent(p)
	return nil
}

// Accounts persists model.Account. Parents may be stored after their
// children, so parent references left open by the row pass are resolved
// once every account is loaded.
type Accounts struct {
	*backend.Base
}

func NewAccounts() *Accounts {
	return &Accounts{backend.NewBase(accountVersion, model.TypeAccount, accountTable, accountColumns,
		backend.WithIndex("accounts_parent_index", "parent_guid"),
		backend.WithFactory(func(b *model.Book) model.Instance { return model.NewAccount(b) }))}
}

type openParent struct {
	account *model.Account
	parent  string
}

func (a *Accounts) LoadAll(ctx context.Context, be *backend.Backend) error {
	var open []openParent
	insts, err := a.LoadRows(ctx, be, "SELECT * FROM "+accountTable, func(row db.Row, inst model.Instance) {
		acct := inst.(*model.Account)
		if row.IsNull("parent_guid") {
			return
		}
		s, err := row.GetString("parent_guid")
		if err != nil {
			return
		}
		if p := acct.Parent(); p == nil || p.GUID().String() != s {
			open = append(open, openParent{account: acct, parent: s})
		}
	})
	if err != nil {
		return err
	}
	for _, o := range open {
		g, err := guid.Parse(o.parent)
		if err != nil {
			logging.Debugf("account %s: bad parent guid %q", o.account.GUID(), o.parent)
			continue
		}
		parent, ok := be.Book().Lookup(model.TypeAccount, g).(*model.Account)
		if !ok {
			logging.Debugf("account %s: parent %s not found", o.account.GUID(), g)
			continue
		}
		o.account.SetParent(parent)
		o.account.MarkClean()
	}
	return be.LoadSlots(ctx, insts)
}

// Write saves every account.
func (a *Accounts) Write(ctx context.Context, be *backend.Backend) error {
	return be.WriteInstances(ctx, a, nil)
}
