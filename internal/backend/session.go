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

// LoadType selects what Load does.
type LoadType int

const (
	// LoadInitial reads version info, creates or upgrades every table and
	// then loads all objects.
	LoadInitial LoadType = iota
	// LoadAll only reloads objects.
	LoadAll
)

func (be *Backend) begin(ctx context.Context) error {
	if err := be.conn.BeginTransaction(ctx); err != nil {
		return err
	}
	be.txDepth++
	return nil
}

func (be *Backend) commit(ctx context.Context) error {
	be.txDepth--
	return be.conn.CommitTransaction(ctx)
}

func (be *Backend) rollback(ctx context.Context) {
	be.txDepth--
	if err := be.conn.RollbackTransaction(ctx); err != nil {
		logging.Errorf("rollback failed: %v", err)
	}
}

// RunInTransaction runs fn inside a transaction, committing when it
// returns nil and rolling back otherwise. Statements issued by fn are not
// retried after a lost connection.
func (be *Backend) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	if err := be.begin(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		be.rollback(ctx)
		return err
	}
	return be.commit(ctx)
}

// CreateAllTables runs CreateTables for every registered type in order.
func (be *Backend) CreateAllTables(ctx context.Context) error {
	for typeName, ob := range be.registry.All() {
		if err := ob.CreateTables(ctx, be); err != nil {
			return fmt.Errorf("create tables for %s (%s): %w", typeName, ob.TableName(), err)
		}
	}
	return nil
}

// Load reads the database into book. Types are loaded in registration order
// and the first failing type stops the load.
func (be *Backend) Load(ctx context.Context, book *model.Book, lt LoadType) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	be.book = book
	be.loading = true
	defer func() {
		be.loading = false
		// Tables exist from here on, so commits must check before
		// inserting, even when the load failed part way.
		be.pristine = false
	}()

	if lt == LoadInitial {
		if err := be.InitVersionInfo(ctx); err != nil {
			return fmt.Errorf("read versions: %w", err)
		}
		if err := be.CreateAllTables(ctx); err != nil {
			return err
		}
	}
	for typeName, ob := range be.registry.All() {
		if err := ob.LoadAll(ctx, be); err != nil {
			return fmt.Errorf("load %s (%s): %w", typeName, ob.TableName(), err)
		}
		logging.Debugf("loaded %d %s object(s)", book.Count(typeName), typeName)
	}
	return nil
}

// SyncAll replaces the database content with book: every registered table
// and the versions table are dropped and recreated, then each type is
// written inside a single transaction.
func (be *Backend) SyncAll(ctx context.Context, book *model.Book) error {
	if be.conn == nil {
		return db.ErrNoConnection
	}
	if be.loading {
		return ErrLoading
	}
	be.book = book

	for _, ob := range be.registry.All() {
		if err := be.conn.DropTable(ctx, ob.TableName()); err != nil {
			return err
		}
	}
	if err := be.conn.DropTable(ctx, VersionTable); err != nil {
		return err
	}
	if err := be.ResetVersionInfo(ctx); err != nil {
		return err
	}
	be.pristine = true
	defer func() { be.pristine = false }()

	if err := be.CreateAllTables(ctx); err != nil {
		return err
	}
	err := be.RunInTransaction(ctx, func(ctx context.Context) error {
		for typeName, ob := range be.registry.All() {
			if err := ob.Write(ctx, be); err != nil {
				return fmt.Errorf("write %s (%s): %w", typeName, ob.TableName(), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, typeName := range book.TypeNames() {
		book.ForEach(typeName, func(inst model.Instance) bool {
			inst.MarkClean()
			return true
		})
	}
	return nil
}

// BeginEdit is called before inst is modified. Edits are written as a whole
// by CommitEdit, so there is nothing to do.
func (be *Backend) BeginEdit(model.Instance) {}

// RollbackEdit is called when an edit of inst is abandoned.
func (be *Backend) RollbackEdit(model.Instance) {}

// CommitEdit writes inst through its Object Backend in a transaction.
// During a load or query the object is only marked clean. Destroyed objects
// are removed from the book once deleted.
func (be *Backend) CommitEdit(ctx context.Context, inst model.Instance) error {
	if be.loading || be.inQuery {
		inst.MarkClean()
		return nil
	}
	if !inst.IsDirty() && !inst.IsDestroyed() {
		return nil
	}
	if be.conn == nil {
		return db.ErrNoConnection
	}
	ob, ok := be.registry.Get(inst.TypeName())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, inst.TypeName())
	}
	err := be.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := ob.Commit(ctx, be, inst); err != nil {
			return fmt.Errorf("commit %s %s: %w", inst.TypeName(), inst.GUID(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	inst.MarkClean()
	if inst.IsDestroyed() && inst.Book() != nil {
		inst.Book().Remove(inst)
	}
	return nil
}
