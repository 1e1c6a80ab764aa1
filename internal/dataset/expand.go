// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"time"

	"github.com/wingedpig/vibetable/internal/vibration"
)

// LongRow is one axis of one record.
type LongRow struct {
	Time time.Time
	// Axis is the source axis. It is not written as a column.
	Axis  vibration.Axis
	Cells [vibration.NumSlots]vibration.Cell
}

// Cell returns the value for slot.
func (r *LongRow) Cell(slot vibration.Slot) vibration.Cell {
	if !slot.Valid() {
		return vibration.Cell{}
	}
	return r.Cells[slot-1]
}

// LongTable is the axis-stacked projection of a wide table.
type LongTable struct {
	rows  []LongRow
	label *vibration.Label
}

// Len returns the number of rows.
func (t *LongTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *LongTable) Row(i int) LongRow {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t *LongTable) Rows() []LongRow {
	if t == nil {
		return nil
	}
	out := make([]LongRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Label returns the table label and whether one is set.
func (t *LongTable) Label() (vibration.Label, bool) {
	if t == nil || t.label == nil {
		return 0, false
	}
	return *t.label, true
}

// Columns returns the header for this table.
func (t *LongTable) Columns() []string {
	_, labeled := t.Label()
	return LongColumns(labeled)
}

// LongColumns returns the long header: time, the unsuffixed slots in
// ascending order, then the label when present.
func LongColumns(labeled bool) []string {
	cols := make([]string, 0, 2+vibration.NumSlots)
	cols = append(cols, TimeColumn)
	for _, s := range vibration.Slots() {
		cols = append(cols, s.Name())
	}
	if labeled {
		cols = append(cols, LabelColumn)
	}
	return cols
}

// Expand stacks the axes of every wide row into three long rows, X then Y
// then Z. It never fails; the result always has 3*t.Len() rows.
func Expand(t *WideTable) *LongTable {
	out := &LongTable{}
	if t == nil {
		return out
	}
	out.label = t.label
	out.rows = make([]LongRow, 0, len(t.rows)*vibration.NumAxes)
	for i := range t.rows {
		w := &t.rows[i]
		for _, a := range vibration.Axes {
			lr := LongRow{Time: w.Time, Axis: a}
			for s := 0; s < vibration.NumSlots; s++ {
				lr.Cells[s] = w.Cells[s][a]
			}
			out.rows = append(out.rows, lr)
		}
	}
	return out
}
