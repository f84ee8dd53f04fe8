package objects

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/model"
	"github.com/toeirei/ledgerbase/internal/testutil"
)

func count(t *testing.T, be *backend.Backend, table string) int {
	t.Helper()
	res, err := be.ExecuteSelectStatement(context.Background(), be.CreateStatementFromSQL("SELECT COUNT(*) AS n FROM "+table))
	require.NoError(t, err)
	defer res.Close()
	require.True(t, res.Next())
	n, err := res.Row().GetInt("n")
	require.NoError(t, err)
	return int(n)
}

// reload opens path again and loads it into a new book.
func reload(t *testing.T, path string) (*backend.Backend, *model.Book) {
	t.Helper()
	book := model.NewBook()
	be := backend.New(testutil.OpenFile(t, path), book, NewRegistry())
	require.NoError(t, be.Load(context.Background(), book, backend.LoadInitial))
	return be, book
}

func TestRegisterAllOrder(t *testing.T) {
	var names []string
	for name := range NewRegistry().All() {
		names = append(names, name)
	}
	assert.Equal(t, []string{TypeSlots, model.TypeCommodity, model.TypeAccount, model.TypeLot, model.TypeCustomer, model.TypeOrder}, names)
}

func TestCreateTablesTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	book := model.NewBook()
	be := backend.New(testutil.OpenMemory(t), book, NewRegistry())
	require.NoError(t, be.InitVersionInfo(ctx))
	require.NoError(t, be.CreateAllTables(ctx))
	before := be.Versions()
	require.NoError(t, be.CreateAllTables(ctx))
	assert.Equal(t, before, be.Versions())
	assert.Equal(t, map[string]int{
		slotsTable:     slotsVersion,
		commodityTable: commodityVersion,
		accountTable:   accountVersion,
		lotTable:       lotVersion,
		customerTable:  customerVersion,
		orderTable:     orderVersion,
	}, before)
}

func TestSyncAndReloadEveryType(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempFile(t)
	book := model.NewBook()

	usd := model.NewCommodity(book)
	usd.SetNamespace("CURRENCY")
	usd.SetMnemonic("USD")
	usd.SetFraction(100)
	usd.SetQuoteFlag(true)
	tmpl := model.NewCommodity(book)
	tmpl.SetNamespace("template")
	tmpl.SetMnemonic("template")

	// The child is written before its parent.
	child := model.NewAccount(book)
	child.SetName("Checking")
	child.SetType("BANK")
	child.SetCommodity(usd)
	root := model.NewAccount(book)
	root.SetName("Assets")
	root.SetType("ASSET")
	root.SetPlaceholder(true)
	child.SetParent(root)

	lot := model.NewLot(book)
	lot.SetAccount(child)
	lot.SetClosed(true)

	cust := model.NewCustomer(book)
	cust.SetID("C001")
	cust.SetName("Acme")
	cust.SetActive(true)
	cust.SetCredit(model.NewNumeric(150000, 100))
	cust.SetAddr(model.Address{Name: "Acme Ltd", Addr1: "1 Main St", Email: "billing@acme.test"})

	opened := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	ord := model.NewOrder(book)
	ord.SetID("O-17")
	ord.SetReference("PO 4711")
	ord.SetActive(true)
	ord.SetDateOpened(opened)
	ord.SetOwner(model.Owner{Type: model.OwnerCustomer, Instance: cust})
	draft := model.NewOrder(book)
	draft.SetNotes("no id yet")

	child.SetSlot("last-num", int64(42))
	child.SetSlot("rate", 3.25)
	child.SetSlot("memo", "monthly")
	child.SetSlot("limit", model.NewNumeric(5, 2))
	child.SetSlot("reconciled", opened)
	child.SetSlot("due", model.Date{Year: 2025, Month: time.April, Day: 1})
	child.SetSlot("peer", root.GUID())

	be := backend.New(testutil.OpenFile(t, path), book, NewRegistry())
	require.NoError(t, be.SyncAll(ctx, book))
	assert.Equal(t, 7, count(t, be, slotsTable))

	_, loaded := reload(t, path)

	assert.Nil(t, loaded.Lookup(model.TypeCommodity, tmpl.GUID()))
	assert.Nil(t, loaded.Lookup(model.TypeOrder, draft.GUID()))
	assert.Equal(t, 1, loaded.Count(model.TypeCommodity))
	assert.Equal(t, 2, loaded.Count(model.TypeAccount))

	gotUSD := loaded.Lookup(model.TypeCommodity, usd.GUID()).(*model.Commodity)
	assert.Equal(t, "CURRENCY::USD", gotUSD.UniqueName())
	assert.Equal(t, 100, gotUSD.Fraction())
	assert.True(t, gotUSD.QuoteFlag())

	gotRoot := loaded.Lookup(model.TypeAccount, root.GUID()).(*model.Account)
	gotChild := loaded.Lookup(model.TypeAccount, child.GUID()).(*model.Account)
	assert.Same(t, gotRoot, gotChild.Parent())
	assert.Nil(t, gotRoot.Parent())
	assert.Same(t, gotUSD, gotChild.Commodity())
	assert.True(t, gotRoot.Placeholder())
	assert.False(t, gotChild.IsDirty())

	gotLot := loaded.Lookup(model.TypeLot, lot.GUID()).(*model.Lot)
	assert.Same(t, gotChild, gotLot.Account())
	assert.True(t, gotLot.IsClosed())

	gotCust := loaded.Lookup(model.TypeCustomer, cust.GUID()).(*model.Customer)
	assert.Equal(t, "C001", gotCust.ID())
	assert.True(t, gotCust.Credit().Equal(model.NewNumeric(1500, 1)))
	assert.Equal(t, cust.Addr(), gotCust.Addr())
	assert.Equal(t, model.Address{}, gotCust.ShipAddr())

	gotOrd := loaded.Lookup(model.TypeOrder, ord.GUID()).(*model.Order)
	assert.Equal(t, "PO 4711", gotOrd.Reference())
	assert.True(t, gotOrd.DateOpened().Equal(opened))
	assert.True(t, gotOrd.DateClosed().IsZero())
	assert.Equal(t, model.OwnerCustomer, gotOrd.Owner().Type)
	assert.Same(t, gotCust, gotOrd.Owner().Instance)

	slots := gotChild.Slots()
	assert.Equal(t, []string{"due", "last-num", "limit", "memo", "peer", "rate", "reconciled"}, slots.Keys())
	v, _ := slots.Get("last-num")
	assert.Equal(t, int64(42), v)
	v, _ = slots.Get("rate")
	assert.Equal(t, 3.25, v)
	v, _ = slots.Get("memo")
	assert.Equal(t, "monthly", v)
	v, _ = slots.Get("limit")
	assert.Equal(t, model.NewNumeric(5, 2), v)
	v, _ = slots.Get("due")
	assert.Equal(t, model.Date{Year: 2025, Month: time.April, Day: 1}, v)
	v, _ = slots.Get("peer")
	assert.Equal(t, root.GUID(), v)
	v, _ = slots.Get("reconciled")
	ts, ok := v.(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(opened))
	assert.Zero(t, gotRoot.Slots().Len())
}

func TestOrderCommitSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempFile(t)
	be, book := reload(t, path)

	cust := model.NewCustomer(book)
	cust.SetID("C9")
	cust.SetName("Initech")
	require.NoError(t, be.CommitEdit(ctx, cust))

	ord := model.NewOrder(book)
	ord.SetID("ORD-1")
	ord.SetNotes("rush")
	ord.SetDateOpened(time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC))
	ord.SetOwner(model.Owner{Type: model.OwnerCustomer, Instance: cust})
	require.NoError(t, be.CommitEdit(ctx, ord))

	_, again := reload(t, path)
	got, ok := again.Lookup(model.TypeOrder, ord.GUID()).(*model.Order)
	require.True(t, ok)
	assert.Equal(t, "ORD-1", got.ID())
	assert.Equal(t, "rush", got.Notes())
	assert.Equal(t, cust.GUID(), got.Owner().Instance.GUID())

	ord.SetActive(true)
	require.NoError(t, be.CommitEdit(ctx, ord))
	assert.Equal(t, 1, count(t, be, orderTable))

	_, again = reload(t, path)
	got = again.Lookup(model.TypeOrder, ord.GUID()).(*model.Order)
	assert.True(t, got.Active())
}

func TestOrderWithUnknownOwnerLoadsWithoutOwner(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempFile(t)
	be, book := reload(t, path)

	ord := model.NewOrder(book)
	ord.SetID("X")
	ord.SetDateOpened(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, be.CommitEdit(ctx, ord))
	stray := guid.New().String()
	_, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(
		"UPDATE orders SET owner_type = 2, owner_guid = '"+stray+"'"))
	require.NoError(t, err)

	_, again := reload(t, path)
	got := again.Lookup(model.TypeOrder, ord.GUID()).(*model.Order)
	assert.False(t, got.Owner().IsSet())
}

func TestSlotsReplacedOnCommit(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempFile(t)
	be, book := reload(t, path)

	acct := model.NewAccount(book)
	acct.SetName("Cash")
	acct.SetSlot("a", "1")
	acct.SetSlot("b", "2")
	require.NoError(t, be.CommitEdit(ctx, acct))
	assert.Equal(t, 2, count(t, be, slotsTable))

	acct.Slots().Delete("a")
	acct.SetSlot("c", int64(3))
	require.NoError(t, be.CommitEdit(ctx, acct))
	assert.Equal(t, 2, count(t, be, slotsTable))

	_, again := reload(t, path)
	got := again.Lookup(model.TypeAccount, acct.GUID()).(*model.Account)
	assert.Equal(t, []string{"b", "c"}, got.Slots().Keys())

	acct.MarkDestroyed()
	require.NoError(t, be.CommitEdit(ctx, acct))
	assert.Equal(t, 0, count(t, be, slotsTable))
	assert.Equal(t, 0, count(t, be, accountTable))
}

func TestSlotsUnsupportedValueIsSkipped(t *testing.T) {
	ctx := context.Background()
	be, book := reload(t, testutil.TempFile(t))
	lot := model.NewLot(book)
	lot.SetSlot("weird", []int{1})
	lot.SetSlot("ok", "yes")
	require.NoError(t, be.CommitEdit(ctx, lot))
	assert.Equal(t, 1, count(t, be, slotsTable))
}

func TestSlotsUpgradeFromVersionOne(t *testing.T) {
	ctx := context.Background()
	book := model.NewBook()
	be := backend.New(testutil.OpenMemory(t), book, NewRegistry())
	require.NoError(t, be.InitVersionInfo(ctx))

	// Version 1 had no date, guid or numeric columns.
	require.NoError(t, be.CreateVersionedTable(ctx, slotsTable, 1, slotColumns[:8]))
	owner := guid.New().String()
	_, err := be.ExecuteNonSelectStatement(ctx, be.CreateStatementFromSQL(
		"INSERT INTO slots(obj_guid, name, slot_type, string_val) VALUES('"+owner+"', 'memo', 4, 'kept')"))
	require.NoError(t, err)

	require.NoError(t, be.CreateAllTables(ctx))
	assert.Equal(t, slotsVersion, be.TableVersion(slotsTable))
	cols, err := be.TableColumns(ctx, slotsTable)
	require.NoError(t, err)
	assert.Contains(t, cols, "gdate_val")
	assert.Contains(t, cols, "numeric_val_denom")
	assert.Equal(t, 1, count(t, be, slotsTable))
}

func TestCommitChoosesUpdateForExistingRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	conn, err := db.NewConn(sqlDB, "sqlite")
	require.NoError(t, err)

	book := model.NewBook()
	lot := model.NewLot(book)
	g := lot.GUID().String()
	be := backend.New(conn, book, NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT guid FROM lots WHERE guid = '" + g + "'").
		WillReturnRows(sqlmock.NewRows([]string{"guid"}).AddRow(g))
	mock.ExpectExec("UPDATE lots SET account_guid = NULL, is_closed = '0' WHERE guid = '" + g + "'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM slots WHERE obj_guid = '" + g + "'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, be.CommitEdit(context.Background(), lot))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, lot.IsDirty())
}

func TestCommitChoosesInsertForMissingRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	conn, err := db.NewConn(sqlDB, "sqlite")
	require.NoError(t, err)

	book := model.NewBook()
	cm := model.NewCommodity(book)
	cm.SetNamespace("NASDAQ")
	cm.SetMnemonic("ACME")
	cm.SetFraction(1)
	g := cm.GUID().String()
	be := backend.New(conn, book, NewRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT guid FROM commodities WHERE guid = '" + g + "'").
		WillReturnRows(sqlmock.NewRows([]string{"guid"}))
	mock.ExpectExec("INSERT INTO commodities(guid, namespace, mnemonic, fullname, cusip, fraction, quote_flag, quote_source, quote_tz) " +
		"VALUES('" + g + "', 'NASDAQ', 'ACME', '', '', '1', '0', '', '')").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM slots WHERE obj_guid = '" + g + "'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, be.CommitEdit(context.Background(), cm))
	assert.NoError(t, mock.ExpectationsWereMet())
}
