// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package objects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/guid"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
)

// TypeSlots is the registry name of the slot store.
const TypeSlots = "Slots"

const (
	slotsTable   = "slots"
	slotsVersion = 4
	slotMaxLen   = 4096

	// slotChunk bounds the GUID list of one IN clause.
	slotChunk = 500
)

// SlotType tags which value column of a slot row is in use. The numbers are
// persisted.
type SlotType int

const (
	SlotInvalid SlotType = 0
	SlotInt64   SlotType = 1
	SlotDouble  SlotType = 2
	SlotNumeric SlotType = 3
	SlotString  SlotType = 4
	SlotGUID    SlotType = 5
	SlotTime    SlotType = 6
	SlotDate    SlotType = 10
)

// slotTypeOf maps a frame value onto its slot type and stored form.
func slotTypeOf(v any) (SlotType, any) {
	switch x := v.(type) {
	case int64:
		return SlotInt64, x
	case int:
		return SlotInt64, int64(x)
	case int32:
		return SlotInt64, int64(x)
	case float64:
		return SlotDouble, x
	case float32:
		return SlotDouble, float64(x)
	case model.Numeric:
		return SlotNumeric, x
	case string:
		return SlotString, x
	case guid.GUID:
		return SlotGUID, x
	case time.Time:
		return SlotTime, x
	case model.Date:
		return SlotDate, x
	}
	return SlotInvalid, nil
}

// slotRow is one row of the slots table.
type slotRow struct {
	obj   string
	name  string
	typ   SlotType
	value any
}

func rowOf(obj any) *slotRow {
	r, _ := obj.(*slotRow)
	return r
}

func slotValueColumn(name string, kind backend.Kind, size int, typ SlotType) *backend.Column {
	return backend.NewColumnFunc(name, kind, size, backend.NoFlags,
		func(obj any) (any, bool) {
			r := rowOf(obj)
			if r == nil || r.typ != typ {
				return nil, false
			}
			return r.value, true
		},
		func(obj any, v any) error {
			if r := rowOf(obj); r != nil && r.typ == typ {
				r.value = v
			}
			return nil
		})
}

var slotColumns = []*backend.Column{
	backend.NewColumn("id", backend.KindInt, 0, backend.FlagPrimaryKey|backend.FlagNotNull|backend.FlagAutoInc, ""),
	backend.NewColumnFunc("obj_guid", backend.KindString, guid.Len, backend.FlagNotNull,
		func(obj any) (any, bool) { return rowOf(obj).obj, true },
		func(obj any, v any) error {
			s, ok := v.(string)
			if !ok {
				return model.ErrPropertyType
			}
			rowOf(obj).obj = s
			return nil
		}),
	backend.NewColumnFunc("name", backend.KindString, slotMaxLen, backend.FlagNotNull,
		func(obj any) (any, bool) { return rowOf(obj).name, true },
		func(obj any, v any) error {
			s, ok := v.(string)
			if !ok {
				return model.ErrPropertyType
			}
			rowOf(obj).name = s
			return nil
		}),
	backend.NewColumnFunc("slot_type", backend.KindInt, 0, backend.FlagNotNull,
		func(obj any) (any, bool) { return int(rowOf(obj).typ), true },
		func(obj any, v any) error {
			n, ok := v.(int)
			if !ok {
				return model.ErrPropertyType
			}
			rowOf(obj).typ = SlotType(n)
			return nil
		}),
	slotValueColumn("int64_val", backend.KindInt64, 0, SlotInt64),
	slotValueColumn("string_val", backend.KindString, slotMaxLen, SlotString),
	slotValueColumn("double_val", backend.KindDouble, 0, SlotDouble),
	slotValueColumn("timespec_val", backend.KindDateTime, 0, SlotTime),
	slotValueColumn("guid_val", backend.KindGUID, 0, SlotGUID),
	slotValueColumn("numeric_val", backend.KindNumeric, 0, SlotNumeric),
	slotValueColumn("gdate_val", backend.KindDate, 0, SlotDate),
}

// Slots stores the key/value frames of every object in one table keyed by
// the owner's GUID. It is not a model type: LoadAll and Write do nothing
// and the Backend calls it through backend.SlotStore.
type Slots struct {
	*backend.Base
}

var _ backend.SlotStore = (*Slots)(nil)

func NewSlots() *Slots {
	return &Slots{backend.NewBase(slotsVersion, TypeSlots, slotsTable, slotColumns,
		backend.WithIndex("slots_guid_index", "obj_guid"))}
}

// CreateTables rebuilds tables older than version 2, whose value columns
// had other types, and otherwise behaves like the generic version.
func (s *Slots) CreateTables(ctx context.Context, be *backend.Backend) error {
	stored := be.TableVersion(slotsTable)
	if stored == 0 || stored >= 2 {
		return s.Base.CreateTables(ctx, be)
	}
	if err := be.UpgradeTable(ctx, slotsTable, slotColumns); err != nil {
		return err
	}
	logging.Infof("table %s upgraded from version %d to %d", slotsTable, stored, slotsVersion)
	return be.SetTableVersion(ctx, slotsTable, slotsVersion)
}

func (s *Slots) LoadAll(context.Context, *backend.Backend) error { return nil }

func (s *Slots) Write(context.Context, *backend.Backend) error { return nil }

// LoadSlots replaces the frames of insts with their stored slots.
func (s *Slots) LoadSlots(ctx context.Context, be *backend.Backend, insts []model.Instance) error {
	byGUID := make(map[string]model.Instance, len(insts))
	for _, inst := range insts {
		inst.Slots().Clear()
		byGUID[inst.GUID().String()] = inst
	}
	for start := 0; start < len(insts); start += slotChunk {
		chunk := insts[start:min(start+slotChunk, len(insts))]
		var sb strings.Builder
		sb.WriteString("SELECT * FROM " + slotsTable + " WHERE obj_guid IN (")
		be.AppendGUIDsToSQL(&sb, chunk)
		sb.WriteString(")")

		res, err := be.ExecuteSelectStatement(ctx, be.CreateStatementFromSQL(sb.String()))
		if err != nil {
			return fmt.Errorf("load slots: %w", err)
		}
		for row := range db.Rows(res) {
			r := &slotRow{}
			be.LoadObject(row, TypeSlots, r, slotColumns)
			inst, ok := byGUID[r.obj]
			if !ok || r.value == nil {
				logging.Debugf("slot %q of %s: no value of type %d", r.name, r.obj, r.typ)
				continue
			}
			// Frame.Set leaves the owner clean.
			inst.Slots().Set(r.name, r.value)
		}
		if err := res.Err(); err != nil {
			return fmt.Errorf("load slots: %w", err)
		}
	}
	return nil
}

// SaveSlots replaces the stored slots of inst with its current frame.
func (s *Slots) SaveSlots(ctx context.Context, be *backend.Backend, inst model.Instance) error {
	if !be.Pristine() {
		if err := s.DeleteSlots(ctx, be, inst); err != nil {
			return err
		}
	}
	owner := inst.GUID().String()
	frame := inst.Slots()
	for _, key := range frame.Keys() {
		v, _ := frame.Get(key)
		typ, stored := slotTypeOf(v)
		if typ == SlotInvalid {
			logging.Warnf("%s %s: slot %q has unsupported type %T", inst.TypeName(), owner, key, v)
			continue
		}
		r := &slotRow{obj: owner, name: key, typ: typ, value: stored}
		if err := be.DoDBOperation(ctx, backend.OpInsert, slotsTable, TypeSlots, r, slotColumns); err != nil {
			return fmt.Errorf("save slot %q: %w", key, err)
		}
	}
	return nil
}

// DeleteSlots removes every stored slot of inst.
func (s *Slots) DeleteSlots(ctx context.Context, be *backend.Backend, inst model.Instance) error {
	stmt := be.CreateStatementFromSQL("DELETE FROM " + slotsTable)
	stmt.AddWhereCond(TypeSlots, []db.Pair{{Column: "obj_guid", Value: inst.GUID().String()}})
	if _, err := be.ExecuteNonSelectStatement(ctx, stmt); err != nil {
		return fmt.Errorf("delete slots of %s: %w", inst.GUID(), err)
	}
	return nil
}
