package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/model"
	"github.com/toeirei/ledgerbase/internal/testutil"
)

func lotCols() []*Column {
	return []*Column{
		NewColumn("guid", KindGUID, 0, FlagPrimaryKey|FlagNotNull, "guid"),
		NewColumn("account_guid", KindAccountRef, 0, NoFlags, "account"),
		NewColumn("is_closed", KindBoolean, 0, FlagNotNull, "is-closed"),
	}
}

type lotBackend struct{ *Base }

func newLotBackend(version int, cols []*Column) *lotBackend {
	return &lotBackend{NewBase(version, model.TypeLot, "lots", cols,
		WithFactory(func(b *model.Book) model.Instance { return model.NewLot(b) }))}
}

func (l *lotBackend) Write(ctx context.Context, be *Backend) error {
	return be.WriteInstances(ctx, l, nil)
}

func newTestBackend(t *testing.T, obs ...ObjectBackend) (*Backend, *model.Book) {
	t.Helper()
	reg := NewRegistry()
	for _, ob := range obs {
		reg.Register(ob.TypeName(), ob)
	}
	book := model.NewBook()
	return New(testutil.OpenMemory(t), book, reg), book
}

func countRows(t *testing.T, be *Backend, table string) int {
	t.Helper()
	res, err := be.ExecuteSelectStatement(context.Background(), be.CreateStatementFromSQL("SELECT COUNT(*) AS n FROM "+table))
	require.NoError(t, err)
	defer res.Close()
	require.True(t, res.Next())
	n, err := res.Row().GetInt("n")
	require.NoError(t, err)
	return int(n)
}

func TestKindTableComplete(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		ops := kindTable[k]
		assert.NotNil(t, ops.load, "load of %s", k)
		assert.NotNil(t, ops.addToTable, "addToTable of %s", k)
		assert.NotNil(t, ops.addToQuery, "addToQuery of %s", k)
		assert.NotEmpty(t, k.String())
	}
}

func TestRegistryLaterRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	first := newLotBackend(1, lotCols())
	second := newLotBackend(2, lotCols())
	reg.Register(model.TypeLot, first)
	reg.Register(model.TypeLot, second)

	got, ok := reg.Get(model.TypeLot)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 2, reg.Len())
	_, ok = reg.Get(model.TypeOrder)
	assert.False(t, ok)
}

func TestInitVersionInfoFreshDatabaseIsPristine(t *testing.T) {
	ctx := context.Background()
	be, _ := newTestBackend(t)
	require.NoError(t, be.InitVersionInfo(ctx))
	assert.True(t, be.Pristine())
	assert.Empty(t, be.Versions())

	require.NoError(t, be.SetTableVersion(ctx, "lots", 1))
	require.NoError(t, be.SetTableVersion(ctx, "lots", 2))
	assert.Equal(t, 1, countRows(t, be, VersionTable))

	other := New(be.Conn(), model.NewBook(), nil)
	require.NoError(t, other.InitVersionInfo(ctx))
	assert.False(t, other.Pristine())
	assert.Equal(t, 2, other.TableVersion("lots"))
	assert.Equal(t, 0, other.TableVersion("orders"))
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	lots := newLotBackend(1, lotCols())
	be, _ := newTestBackend(t, lots)
	require.NoError(t, be.InitVersionInfo(ctx))
	require.NoError(t, be.CreateAllTables(ctx))
	require.NoError(t, be.CreateAllTables(ctx))
	assert.Equal(t, 1, be.TableVersion("lots"))

	exists, err := be.Conn().DoesTableExist(ctx, "lots")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateTablesAddsColumnsOfNewerVersion(t *testing.T) {
	ctx := context.Background()
	old := newLotBackend(1, lotCols()[:2])
	be, book := newTestBackend(t, old)
	require.NoError(t, be.Load(ctx, book, LoadInitial))

	lot := model.NewLot(book)
	require.NoError(t, be.CommitEdit(ctx, lot))

	newer := newLotBackend(2, lotCols())
	be2 := New(be.Conn(), model.NewBook(), func() *Registry {
		r := NewRegistry()
		r.Register(model.TypeLot, newer)
		return r
	}())
	require.NoError(t, be2.InitVersionInfo(ctx))
	require.NoError(t, be2.CreateAllTables(ctx))
	assert.Equal(t, 2, be2.TableVersion("lots"))

	cols, err := be2.TableColumns(ctx, "lots")
	require.NoError(t, err)
	assert.Contains(t, cols, "is_closed")
	assert.Equal(t, 1, countRows(t, be2, "lots"))
}

func TestUpgradeTableKeepsSharedColumns(t *testing.T) {
	ctx := context.Background()
	be, _ := newTestBackend(t)
	require.NoError(t, be.CreateTable(ctx, "lots", lotCols()[:2]))
	g := guid.New().String()
	_, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(
		"INSERT INTO lots(guid, account_guid) VALUES('"+g+"', NULL)"))
	require.NoError(t, err)

	require.NoError(t, be.UpgradeTable(ctx, "lots", lotCols()))

	cols, err := be.TableColumns(ctx, "lots")
	require.NoError(t, err)
	assert.Equal(t, []string{"guid", "account_guid", "is_closed"}, cols)
	assert.Equal(t, 1, countRows(t, be, "lots"))
	exists, err := be.Conn().DoesTableExist(ctx, "lots_new")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBuildStatement(t *testing.T) {
	be := New(nil, model.NewBook(), nil)
	lot := model.NewLot(be.Book())
	lot.SetClosed(true)
	g := lot.GUID().String()

	ins, err := be.BuildStatement(OpInsert, "lots", model.TypeLot, lot, lotCols())
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO lots(guid, account_guid, is_closed) VALUES('"+g+"', NULL, '1')", ins.SQL())

	upd, err := be.BuildStatement(OpUpdate, "lots", model.TypeLot, lot, lotCols())
	require.NoError(t, err)
	assert.Equal(t, "UPDATE lots SET account_guid = NULL, is_closed = '1' WHERE guid = '"+g+"'", upd.SQL())

	del, err := be.BuildStatement(OpDelete, "lots", model.TypeLot, lot, lotCols())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM lots WHERE guid = '"+g+"'", del.SQL())

	lot.SetGUID(guid.Zero)
	_, err = be.BuildStatement(OpDelete, "lots", model.TypeLot, lot, lotCols())
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestCommitEditChoosesInsertThenUpdateThenDelete(t *testing.T) {
	ctx := context.Background()
	be, book := newTestBackend(t, newLotBackend(1, lotCols()))
	require.NoError(t, be.Load(ctx, book, LoadInitial))
	assert.False(t, be.Pristine())

	lot := model.NewLot(book)
	require.NoError(t, be.CommitEdit(ctx, lot))
	assert.False(t, lot.IsDirty())
	assert.Equal(t, 1, countRows(t, be, "lots"))

	lot.SetClosed(true)
	require.NoError(t, be.CommitEdit(ctx, lot))
	assert.Equal(t, 1, countRows(t, be, "lots"))

	fresh := model.NewBook()
	require.NoError(t, New(be.Conn(), fresh, be.Registry()).Load(ctx, fresh, LoadAll))
	loaded, ok := fresh.Lookup(model.TypeLot, lot.GUID()).(*model.Lot)
	require.True(t, ok)
	assert.True(t, loaded.IsClosed())
	assert.False(t, loaded.IsDirty())

	lot.MarkDestroyed()
	require.NoError(t, be.CommitEdit(ctx, lot))
	assert.Equal(t, 0, countRows(t, be, "lots"))
	assert.Nil(t, book.Lookup(model.TypeLot, lot.GUID()))
}

func TestCommitEditGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("loading marks clean", func(t *testing.T) {
		be := New(nil, model.NewBook(), nil)
		be.SetLoading(true)
		lot := model.NewLot(be.Book())
		require.NoError(t, be.CommitEdit(ctx, lot))
		assert.False(t, lot.IsDirty())
	})

	t.Run("in query marks clean", func(t *testing.T) {
		be := New(nil, model.NewBook(), nil)
		be.SetInQuery(true)
		lot := model.NewLot(be.Book())
		require.NoError(t, be.CommitEdit(ctx, lot))
		assert.False(t, lot.IsDirty())
	})

	t.Run("clean object is skipped", func(t *testing.T) {
		be := New(nil, model.NewBook(), nil)
		lot := model.NewLot(be.Book())
		lot.MarkClean()
		assert.NoError(t, be.CommitEdit(ctx, lot))
	})

	t.Run("unregistered type", func(t *testing.T) {
		be, book := newTestBackend(t)
		err := be.CommitEdit(ctx, model.NewOrder(book))
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("no connection", func(t *testing.T) {
		be := New(nil, model.NewBook(), nil)
		err := be.CommitEdit(ctx, model.NewLot(be.Book()))
		assert.ErrorIs(t, err, db.ErrNoConnection)
	})
}

func TestSyncAllReplacesContent(t *testing.T) {
	ctx := context.Background()
	be, book := newTestBackend(t, newLotBackend(1, lotCols()))
	require.NoError(t, be.Load(ctx, book, LoadInitial))
	require.NoError(t, be.CommitEdit(ctx, model.NewLot(book)))

	other := model.NewBook()
	a, b := model.NewLot(other), model.NewLot(other)
	b.SetClosed(true)
	require.NoError(t, be.SyncAll(ctx, other))

	assert.Equal(t, 2, countRows(t, be, "lots"))
	assert.False(t, a.IsDirty())
	assert.False(t, b.IsDirty())
	assert.False(t, be.Pristine())
	assert.Equal(t, 1, be.TableVersion("lots"))
}

func TestSyncAllRefusedWhileLoading(t *testing.T) {
	be, book := newTestBackend(t)
	be.SetLoading(true)
	assert.ErrorIs(t, be.SyncAll(context.Background(), book), ErrLoading)
}

func TestLoadLeavesUnknownReferenceUnset(t *testing.T) {
	ctx := context.Background()
	be, book := newTestBackend(t, newLotBackend(1, lotCols()))
	require.NoError(t, be.Load(ctx, book, LoadInitial))

	g := guid.New().String()
	missing := guid.New().String()
	_, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(
		"INSERT INTO lots(guid, account_guid, is_closed) VALUES('"+g+"', '"+missing+"', 0)"))
	require.NoError(t, err)

	fresh := model.NewBook()
	require.NoError(t, New(be.Conn(), fresh, be.Registry()).Load(ctx, fresh, LoadAll))
	lot, ok := fresh.Lookup(model.TypeLot, guid.MustParse(g)).(*model.Lot)
	require.True(t, ok)
	assert.Nil(t, lot.Account())
}

func TestAddMissingColumnsReportsNames(t *testing.T) {
	ctx := context.Background()
	be, _ := newTestBackend(t)
	cols := []*Column{
		NewColumn("guid", KindGUID, 0, FlagPrimaryKey|FlagNotNull, "guid"),
		NewColumn("credit", KindNumeric, 0, NoFlags, "credit"),
	}
	require.NoError(t, be.CreateTable(ctx, "customers", cols[:1]))
	added, err := be.AddMissingColumns(ctx, "customers", cols)
	require.NoError(t, err)
	assert.Equal(t, []string{"credit_num", "credit_denom"}, added)

	added, err = be.AddMissingColumns(ctx, "customers", cols)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestExecuteRetriesOnceAfterLostConnection(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	conn, err := db.NewConn(sqlDB, "sqlite", db.WithRetry(1, 0))
	require.NoError(t, err)

	const q = "DELETE FROM lots"
	mock.ExpectExec(q).WillReturnError(errors.New("write: broken pipe"))
	mock.ExpectPing()
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 3))

	be := New(conn, model.NewBook(), nil)
	n, err := be.ExecuteNonSelectStatement(context.Background(), be.CreateStatementFromSQL(q))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDoesNotRetryBadSQL(t *testing.T) {
	be, _ := newTestBackend(t)
	_, err := be.ExecuteNonSelectStatement(context.Background(), be.CreateStatementFromSQL("INSERT INTO nowhere VALUES(1)"))
	require.Error(t, err)
	assert.Equal(t, db.ErrBadSQL, be.Conn().DBError())
}

func TestAppendGUIDsToSQL(t *testing.T) {
	be := New(nil, model.NewBook(), nil)
	a, b := model.NewLot(be.Book()), model.NewLot(be.Book())
	var sb strings.Builder
	n := be.AppendGUIDsToSQL(&sb, []model.Instance{a, b})
	assert.Equal(t, 2, n)
	assert.Equal(t, "'"+a.GUID().String()+"','"+b.GUID().String()+"'", sb.String())
}

type brokenLoadBackend struct{ *lotBackend }

func (b brokenLoadBackend) LoadAll(context.Context, *Backend) error {
	return errors.New("disk on fire")
}

func TestFailedLoadLeavesBackendNotPristine(t *testing.T) {
	ctx := context.Background()
	be, book := newTestBackend(t, brokenLoadBackend{newLotBackend(1, lotCols())})
	err := be.Load(ctx, book, LoadInitial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lots")
	assert.False(t, be.Pristine())
	assert.False(t, be.Loading())

	lot := model.NewLot(book)
	require.NoError(t, be.CommitEdit(ctx, lot))
	lot.SetClosed(true)
	require.NoError(t, be.CommitEdit(ctx, lot))
	assert.Equal(t, 1, countRows(t, be, "lots"))
}

type refTarget struct{ model.Base }

type refHolder struct{ ref model.Instance }

func TestReferenceKindsRoundTrip(t *testing.T) {
	cases := []struct {
		kind     Kind
		typeName string
	}{
		{KindAccountRef, model.TypeAccount},
		{KindBudgetRef, model.TypeBudget},
		{KindCommodityRef, model.TypeCommodity},
		{KindLotRef, model.TypeLot},
		{KindTxRef, model.TypeTransaction},
		{KindBillTermRef, model.TypeBillTerm},
		{KindInvoiceRef, model.TypeInvoice},
		{KindOrderRef, model.TypeOrder},
		{KindTaxTableRef, model.TypeTaxTable},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			book := model.NewBook()
			target := &refTarget{}
			model.Attach(book, tc.typeName, target)

			col := NewColumnFunc("ref_guid", tc.kind, 0, NoFlags,
				func(obj any) (any, bool) {
					h := obj.(*refHolder)
					return h.ref, h.ref != nil
				},
				func(obj any, v any) error {
					obj.(*refHolder).ref = v.(model.Instance)
					return nil
				})

			cols := col.AddToTable(nil)
			require.Len(t, cols, 1)
			assert.Equal(t, db.TypeString, cols[0].Type)
			assert.Equal(t, 32, cols[0].Size)
			assert.False(t, cols[0].NotNull)

			pairs := col.AddToQuery("Holder", &refHolder{ref: target}, nil)
			require.Len(t, pairs, 1)
			assert.Equal(t, target.GUID().String(), pairs[0].Value)

			loaded := &refHolder{}
			col.Load(book, db.NewRow(map[string]any{"ref_guid": pairs[0].Value}), "Holder", loaded)
			assert.Same(t, target, loaded.ref)

			// A referent of another type is not found and leaves the field unset.
			other := model.NewBook()
			model.Attach(other, model.TypeJob, &refTarget{})
			missing := &refHolder{}
			col.Load(other, db.NewRow(map[string]any{"ref_guid": pairs[0].Value}), "Holder", missing)
			assert.Nil(t, missing.ref)

			empty := col.AddToQuery("Holder", &refHolder{}, nil)
			require.Len(t, empty, 1)
			assert.True(t, empty[0].Null)
		})
	}
}
