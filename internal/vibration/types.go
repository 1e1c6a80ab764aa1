// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package vibration parses free-form vibration sensor logs into flat records.
//
// A log is a sequence of blocks. Each block starts with a timestamp line and
// carries up to three axis sections (X, Y, Z). A section reports three scalar
// noise metrics and up to eight frequency peaks, each peak having a location
// and a magnitude channel. The parser maps both historical line encodings onto
// the same logical slots, so downstream tables never see which encoding
// produced a value.
package vibration

import (
	"math"
	"strconv"
	"time"
)

// Axis identifies one spatial measurement channel.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// NumAxes is the number of axes reported per record.
const NumAxes = 3

// Axes lists every axis in wire order.
var Axes = [NumAxes]Axis{AxisX, AxisY, AxisZ}

// String returns the axis letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// ParseAxis maps an axis letter to an Axis.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "X", "x":
		return AxisX, true
	case "Y", "y":
		return AxisY, true
	case "Z", "z":
		return AxisZ, true
	}
	return 0, false
}

// Slot is a logical parameter identity, independent of how the log encoded it.
// Slots 1-3 are scalar noise metrics; slots 4-19 hold the location and
// magnitude of peaks 1-8.
type Slot int

const (
	SlotNoiseA Slot = 1
	SlotNoiseB Slot = 2
	SlotNoiseC Slot = 3
)

const (
	// NumSlots is the number of parameter slots per axis.
	NumSlots = 19
	// NumPeaks is the number of peaks reported per axis.
	NumPeaks = 8
	// NumScalars is the number of scalar slots per axis.
	NumScalars = 3
)

// PeakLocation returns the slot holding peak p's location channel.
func PeakLocation(p int) Slot {
	return Slot(2 + 2*p)
}

// PeakMagnitude returns the slot holding peak p's magnitude channel.
func PeakMagnitude(p int) Slot {
	return Slot(3 + 2*p)
}

// Valid reports whether s is within 1..NumSlots.
func (s Slot) Valid() bool {
	return s >= 1 && s <= NumSlots
}

// IsPeak reports whether s is a peak-derived slot.
func (s Slot) IsPeak() bool {
	return s > NumScalars && s <= NumSlots
}

// Peak returns the peak index (1-8) for a peak slot, or 0 for a scalar slot.
func (s Slot) Peak() int {
	if !s.IsPeak() {
		return 0
	}
	return int(s-2) / 2
}

// Name returns the unsuffixed column name, e.g. "Parameter-4".
func (s Slot) Name() string {
	return "Parameter-" + strconv.Itoa(int(s))
}

// Column returns the axis-suffixed column name, e.g. "Parameter-4_Y".
func (s Slot) Column(a Axis) string {
	return s.Name() + "_" + a.String()
}

// Slots returns every slot in ascending order.
func Slots() []Slot {
	out := make([]Slot, NumSlots)
	for i := range out {
		out[i] = Slot(i + 1)
	}
	return out
}

// Cell is a nullable numeric value.
type Cell struct {
	Value float64
	Valid bool
}

// Num returns a valid cell holding v. NaN is treated as missing.
func Num(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Value: v, Valid: true}
}

// Key addresses one value within a record.
type Key struct {
	Slot Slot
	Axis Axis
}

// FlatRecord is one timestamped sample.
//
// Values only holds keys the log reported. A key that is present with an
// invalid cell was reported but could not be read as a number.
type FlatRecord struct {
	Timestamp time.Time
	Values    map[Key]Cell
}

// Get returns the cell for (slot, axis) and whether the log reported it.
func (r FlatRecord) Get(slot Slot, axis Axis) (Cell, bool) {
	c, ok := r.Values[Key{Slot: slot, Axis: axis}]
	return c, ok
}

// HasAxis reports whether any value was recorded for axis a.
func (r FlatRecord) HasAxis(a Axis) bool {
	for k := range r.Values {
		if k.Axis == a {
			return true
		}
	}
	return false
}
