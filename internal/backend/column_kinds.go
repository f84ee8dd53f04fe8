// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"strconv"
	"time"

	"github.com/spf13/cast"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

// kindOps is the per-kind behaviour of a Column.
type kindOps struct {
	load       func(c *Column, book *model.Book, row db.Row, typeName string, obj any)
	addToTable func(c *Column, cols []db.ColumnInfo) []db.ColumnInfo
	addToQuery func(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair
}

var kindTable = [kindCount]kindOps{
	KindString:       {loadString, tableOf(db.TypeString), queryString},
	KindGUID:         {loadGUID, tableGUID, queryGUID},
	KindInt:          {loadInt, tableOf(db.TypeInt), queryInt},
	KindInt64:        {loadInt64, tableOf(db.TypeInt64), queryInt},
	KindDateTime:     {loadDateTime, tableOf(db.TypeDateTime), queryDateTime},
	KindDate:         {loadDate, tableOf(db.TypeDate), queryDate},
	KindNumeric:      {loadNumeric, tableNumeric, queryNumeric},
	KindDouble:       {loadDouble, tableOf(db.TypeDouble), queryDouble},
	KindBoolean:      {loadBoolean, tableOf(db.TypeInt), queryBoolean},
	KindAccountRef:   refOps(model.TypeAccount),
	KindBudgetRef:    refOps(model.TypeBudget),
	KindCommodityRef: refOps(model.TypeCommodity),
	KindLotRef:       refOps(model.TypeLot),
	KindTxRef:        refOps(model.TypeTransaction),
	KindAddress:      {loadAddress, tableAddress, queryAddress},
	KindBillTermRef:  refOps(model.TypeBillTerm),
	KindInvoiceRef:   refOps(model.TypeInvoice),
	KindOrderRef:     refOps(model.TypeOrder),
	KindOwnerRef:     {loadOwner, tableOwner, queryOwner},
	KindTaxTableRef:  refOps(model.TypeTaxTable),
}

func pair(col, v string) db.Pair { return db.Pair{Column: col, Value: v} }

func skip(typeName, col string, err error) {
	logging.Debugf("%s.%s: value not loaded: %v", typeName, col, err)
}

// tableOf is the add-to-table step of single-column kinds.
func tableOf(t db.BasicType) func(*Column, []db.ColumnInfo) []db.ColumnInfo {
	return func(c *Column, cols []db.ColumnInfo) []db.ColumnInfo {
		return append(cols, c.info(c.name, t, c.size))
	}
}

func loadString(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	s, err := row.GetString(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, s)
}

func queryString(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		logging.Warnf("%s.%s: %v", typeName, c.name, err)
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, s))
}

func loadInt(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	n, err := row.GetInt(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, int(n))
}

func loadInt64(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	n, err := row.GetInt64(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, n)
}

func queryInt(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		logging.Warnf("%s.%s: %v", typeName, c.name, err)
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, strconv.FormatInt(n, 10)))
}

func loadDouble(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	f, err := row.GetDouble(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, f)
}

func queryDouble(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		logging.Warnf("%s.%s: %v", typeName, c.name, err)
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, strconv.FormatFloat(f, 'g', -1, 64)))
}

func loadBoolean(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	n, err := row.GetInt64(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, n != 0)
}

func queryBoolean(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		logging.Warnf("%s.%s: %v", typeName, c.name, err)
		return append(pairs, db.NullPair(c.name))
	}
	if b {
		return append(pairs, pair(c.name, "1"))
	}
	return append(pairs, pair(c.name, "0"))
}

func loadDateTime(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	t, err := row.GetTime(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, t)
}

// queryDateTime writes the zero time as NULL.
func queryDateTime(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	t, isTime := v.(time.Time)
	if !isTime {
		logging.Warnf("%s.%s: want time.Time, got %T", typeName, c.name, v)
		return append(pairs, db.NullPair(c.name))
	}
	if t.IsZero() {
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, TimeToString(t)))
}

func loadDate(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	t, err := row.GetTime(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, model.DateOf(t))
}

func queryDate(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	var d model.Date
	switch x := v.(type) {
	case model.Date:
		d = x
	case time.Time:
		if !x.IsZero() {
			d = model.DateOf(x)
		}
	default:
		logging.Warnf("%s.%s: want model.Date, got %T", typeName, c.name, v)
	}
	if d.IsZero() {
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, d.String()))
}

func tableGUID(c *Column, cols []db.ColumnInfo) []db.ColumnInfo {
	return append(cols, c.info(c.name, db.TypeString, guid.Len))
}

func loadGUID(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	if row.IsNull(c.name) {
		return
	}
	s, err := row.GetString(c.name)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	g, err := guid.Parse(s)
	if err != nil {
		skip(typeName, c.name, err)
		return
	}
	c.store(typeName, obj, g)
}

func queryGUID(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	if !ok {
		return append(pairs, db.NullPair(c.name))
	}
	g, isGUID := v.(guid.GUID)
	if !isGUID {
		logging.Warnf("%s.%s: want guid.GUID, got %T", typeName, c.name, v)
		return append(pairs, db.NullPair(c.name))
	}
	if g.IsZero() {
		return append(pairs, db.NullPair(c.name))
	}
	return append(pairs, pair(c.name, g.String()))
}

// refOps builds the behaviour of a column referencing an object of refType
// by GUID. Unparsable or unknown GUIDs leave the field unset.
func refOps(refType string) kindOps {
	return kindOps{
		load: func(c *Column, book *model.Book, row db.Row, typeName string, obj any) {
			if row.IsNull(c.name) || book == nil {
				return
			}
			s, err := row.GetString(c.name)
			if err != nil {
				skip(typeName, c.name, err)
				return
			}
			g, err := guid.Parse(s)
			if err != nil {
				skip(typeName, c.name, err)
				return
			}
			inst := book.Lookup(refType, g)
			if inst == nil {
				logging.Debugf("%s.%s: %s %s not found", typeName, c.name, refType, g)
				return
			}
			c.store(typeName, obj, inst)
		},
		addToTable: tableGUID,
		addToQuery: func(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
			v, ok := c.value(obj)
			if !ok {
				return append(pairs, db.NullPair(c.name))
			}
			inst, isInst := v.(model.Instance)
			if !isInst {
				logging.Warnf("%s.%s: want %s, got %T", typeName, c.name, refType, v)
				return append(pairs, db.NullPair(c.name))
			}
			return append(pairs, pair(c.name, inst.GUID().String()))
		},
	}
}

func tableNumeric(c *Column, cols []db.ColumnInfo) []db.ColumnInfo {
	num := c.info(c.name+"_num", db.TypeInt64, 0)
	denom := c.info(c.name+"_denom", db.TypeInt64, 0)
	num.PrimaryKey, denom.PrimaryKey = false, false
	return append(cols, num, denom)
}

func loadNumeric(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	numCol, denomCol := c.name+"_num", c.name+"_denom"
	if row.IsNull(numCol) || row.IsNull(denomCol) {
		return
	}
	num, err := row.GetInt64(numCol)
	if err != nil {
		skip(typeName, numCol, err)
		return
	}
	denom, err := row.GetInt64(denomCol)
	if err != nil {
		skip(typeName, denomCol, err)
		return
	}
	c.store(typeName, obj, model.NewNumeric(num, denom))
}

func queryNumeric(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	numCol, denomCol := c.name+"_num", c.name+"_denom"
	v, ok := c.value(obj)
	n, isNum := v.(model.Numeric)
	if ok && !isNum {
		logging.Warnf("%s.%s: want model.Numeric, got %T", typeName, c.name, v)
	}
	if !ok || !isNum {
		return append(pairs, db.NullPair(numCol), db.NullPair(denomCol))
	}
	return append(pairs,
		pair(numCol, strconv.FormatInt(n.Num, 10)),
		pair(denomCol, strconv.FormatInt(n.Denom, 10)))
}

// addressFields lists the sub-columns of an address in table order.
var addressFields = []struct {
	suffix string
	size   int
	field  func(*model.Address) *string
}{
	{"_name", 1024, func(a *model.Address) *string { return &a.Name }},
	{"_addr1", 1024, func(a *model.Address) *string { return &a.Addr1 }},
	{"_addr2", 1024, func(a *model.Address) *string { return &a.Addr2 }},
	{"_addr3", 1024, func(a *model.Address) *string { return &a.Addr3 }},
	{"_addr4", 1024, func(a *model.Address) *string { return &a.Addr4 }},
	{"_phone", 128, func(a *model.Address) *string { return &a.Phone }},
	{"_fax", 128, func(a *model.Address) *string { return &a.Fax }},
	{"_email", 256, func(a *model.Address) *string { return &a.Email }},
}

func tableAddress(c *Column, cols []db.ColumnInfo) []db.ColumnInfo {
	for _, f := range addressFields {
		size := f.size
		if c.size > 0 {
			size = c.size
		}
		ci := c.info(c.name+f.suffix, db.TypeString, size)
		ci.PrimaryKey = false
		cols = append(cols, ci)
	}
	return cols
}

func loadAddress(c *Column, _ *model.Book, row db.Row, typeName string, obj any) {
	var addr model.Address
	found := false
	for _, f := range addressFields {
		col := c.name + f.suffix
		if row.IsNull(col) {
			continue
		}
		s, err := row.GetString(col)
		if err != nil {
			skip(typeName, col, err)
			continue
		}
		*f.field(&addr) = s
		found = true
	}
	if found {
		c.store(typeName, obj, addr)
	}
}

func queryAddress(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	v, ok := c.value(obj)
	addr, isAddr := v.(model.Address)
	if ok && !isAddr {
		logging.Warnf("%s.%s: want model.Address, got %T", typeName, c.name, v)
	}
	for _, f := range addressFields {
		col := c.name + f.suffix
		if !ok || !isAddr {
			pairs = append(pairs, db.NullPair(col))
			continue
		}
		pairs = append(pairs, pair(col, *f.field(&addr)))
	}
	return pairs
}

func tableOwner(c *Column, cols []db.ColumnInfo) []db.ColumnInfo {
	typ := c.info(c.name+"_type", db.TypeInt, 0)
	g := c.info(c.name+"_guid", db.TypeString, guid.Len)
	typ.PrimaryKey, g.PrimaryKey = false, false
	return append(cols, typ, g)
}

// loadOwner resolves the owner through the type recorded next to its GUID.
// An owner that cannot be resolved is left unset.
func loadOwner(c *Column, book *model.Book, row db.Row, typeName string, obj any) {
	typeCol, guidCol := c.name+"_type", c.name+"_guid"
	if row.IsNull(typeCol) || row.IsNull(guidCol) || book == nil {
		return
	}
	n, err := row.GetInt(typeCol)
	if err != nil {
		skip(typeName, typeCol, err)
		return
	}
	ot := model.OwnerType(n)
	refType := ot.TypeName()
	if refType == "" {
		logging.Debugf("%s.%s: owner type %d references no object", typeName, c.name, n)
		return
	}
	s, err := row.GetString(guidCol)
	if err != nil {
		skip(typeName, guidCol, err)
		return
	}
	g, err := guid.Parse(s)
	if err != nil {
		skip(typeName, guidCol, err)
		return
	}
	inst := book.Lookup(refType, g)
	if inst == nil {
		logging.Debugf("%s.%s: %s %s not found", typeName, c.name, refType, g)
		return
	}
	c.store(typeName, obj, model.Owner{Type: ot, Instance: inst})
}

func queryOwner(c *Column, typeName string, obj any, pairs []db.Pair) []db.Pair {
	typeCol, guidCol := c.name+"_type", c.name+"_guid"
	v, ok := c.value(obj)
	owner, isOwner := v.(model.Owner)
	if ok && !isOwner {
		logging.Warnf("%s.%s: want model.Owner, got %T", typeName, c.name, v)
	}
	if !ok || !isOwner || !owner.IsSet() {
		return append(pairs, db.NullPair(typeCol), db.NullPair(guidCol))
	}
	return append(pairs,
		pair(typeCol, strconv.Itoa(int(owner.Type))),
		pair(guidCol, owner.Instance.GUID().String()))
}
