// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package dataset turns parsed vibration records into fixed-layout tables and
// derives filtered and axis-stacked views from them.
package dataset

import (
	"errors"
	"time"

	"github.com/wingedpig/vibetable/internal/vibration"
)

const (
	TimeColumn  = "Time"
	LabelColumn = "Label"
)

// ErrEmptyInput is returned when a table would be built from zero records.
var ErrEmptyInput = errors.New("no records to convert")

// WideRow is one record: a timestamp plus every slot for every axis.
type WideRow struct {
	Time  time.Time
	Cells [vibration.NumSlots][vibration.NumAxes]vibration.Cell
}

// Cell returns the value for (slot, axis). Out-of-range slots are missing.
func (r *WideRow) Cell(slot vibration.Slot, axis vibration.Axis) vibration.Cell {
	if !slot.Valid() || axis < 0 || int(axis) >= vibration.NumAxes {
		return vibration.Cell{}
	}
	return r.Cells[slot-1][axis]
}

// TimeString returns the row time in canonical form.
func (r *WideRow) TimeString() string {
	return vibration.FormatCanonical(r.Time)
}

// WideTable is an immutable sequence of wide rows sharing one optional label.
// Tables are never modified after construction; derived views are new tables.
type WideTable struct {
	rows  []WideRow
	label *vibration.Label
}

// Len returns the number of rows.
func (t *WideTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *WideTable) Row(i int) WideRow {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t *WideTable) Rows() []WideRow {
	if t == nil {
		return nil
	}
	out := make([]WideRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Label returns the table label and whether one is set.
func (t *WideTable) Label() (vibration.Label, bool) {
	if t == nil || t.label == nil {
		return 0, false
	}
	return *t.label, true
}

// Columns returns the header for this table.
func (t *WideTable) Columns() []string {
	_, labeled := t.Label()
	return WideColumns(labeled)
}

// withRows returns a table sharing t's label with the given rows.
func (t *WideTable) withRows(rows []WideRow) *WideTable {
	return &WideTable{rows: rows, label: t.label}
}

// WideColumns returns the wide header: time, then each slot crossed with
// X, Y and Z in ascending slot order, then the label when present.
func WideColumns(labeled bool) []string {
	cols := make([]string, 0, 2+vibration.NumSlots*vibration.NumAxes)
	cols = append(cols, TimeColumn)
	for _, s := range vibration.Slots() {
		for _, a := range vibration.Axes {
			cols = append(cols, s.Column(a))
		}
	}
	if labeled {
		cols = append(cols, LabelColumn)
	}
	return cols
}

// Materialize builds the wide table for records, one row per record in input
// order. Keys missing from a record, and values that were reported but
// unreadable, become missing cells.
func Materialize(records []vibration.FlatRecord, label *vibration.Label) (*WideTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	if label != nil && !label.Valid() {
		return nil, vibration.ErrUnknownLabel
	}

	rows := make([]WideRow, len(records))
	for i, rec := range records {
		rows[i].Time = rec.Timestamp
		for k, c := range rec.Values {
			if !k.Slot.Valid() || k.Axis < 0 || int(k.Axis) >= vibration.NumAxes {
				continue
			}
			if c.Valid {
				rows[i].Cells[k.Slot-1][k.Axis] = c
			}
		}
	}

	t := &WideTable{rows: rows}
	if label != nil {
		l := *label
		t.label = &l
	}
	return t, nil
}
