// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/wingedpig/vibetable/internal/vibration"
)

// ErrInvalidRange is returned for a window whose start lies after its end or
// whose indexes fall outside the table.
var ErrInvalidRange = errors.New("invalid range")

// Select returns the rows of base whose time lies in [start, end], in their
// original order. An empty result is not an error.
func Select(base *WideTable, start, end time.Time) (*WideTable, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			vibration.FormatCanonical(start), vibration.FormatCanonical(end))
	}
	if base == nil {
		return &WideTable{}, nil
	}
	rows := make([]WideRow, 0, len(base.rows))
	for _, r := range base.rows {
		if r.Time.Before(start) || r.Time.After(end) {
			continue
		}
		rows = append(rows, r)
	}
	return base.withRows(rows), nil
}

// SelectIndex selects by sample index. The indexes are resolved to the times
// of those rows and the table is then filtered by time, so rows sharing a
// boundary timestamp are all kept.
func SelectIndex(base *WideTable, from, to int) (*WideTable, error) {
	n := base.Len()
	if from < 0 || to < 0 || from >= n || to >= n {
		return nil, fmt.Errorf("%w: index window [%d, %d] outside 0..%d", ErrInvalidRange, from, to, n-1)
	}
	if from > to {
		return nil, fmt.Errorf("%w: from %d is after to %d", ErrInvalidRange, from, to)
	}
	return Select(base, base.rows[from].Time, base.rows[to].Time)
}

// TimeRange returns the earliest and latest row times. ok is false for an
// empty table.
func TimeRange(t *WideTable) (min, max time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = t.rows[0].Time, t.rows[0].Time
	for _, r := range t.rows[1:] {
		if r.Time.Before(min) {
			min = r.Time
		}
		if r.Time.After(max) {
			max = r.Time
		}
	}
	return min, max, true
}

// Window describes a selection over a base table, either by time or by
// sample index. The zero Window selects everything.
type Window struct {
	// Start and End bound a time window; a zero value leaves that side open.
	Start time.Time
	End   time.Time

	// ByIndex switches to an index window. To < 0 means the last row.
	ByIndex bool
	From    int
	To      int
}

// IsZero reports whether w selects the whole table.
func (w Window) IsZero() bool {
	return !w.ByIndex && w.Start.IsZero() && w.End.IsZero()
}

// Apply derives the selected rows from base.
func (w Window) Apply(base *WideTable) (*WideTable, error) {
	if w.ByIndex {
		to := w.To
		if to < 0 {
			to = base.Len() - 1
		}
		return SelectIndex(base, w.From, to)
	}
	if w.IsZero() {
		if base == nil {
			return &WideTable{}, nil
		}
		return base, nil
	}

	start, end := w.Start, w.End
	if start.IsZero() || end.IsZero() {
		min, max, ok := TimeRange(base)
		if !ok {
			return Select(base, start, start)
		}
		// An open bound never crosses the given one, so a window lying
		// wholly outside the data selects nothing.
		if start.IsZero() {
			start = min
			if start.After(end) {
				start = end
			}
		}
		if end.IsZero() {
			end = max
			if end.Before(start) {
				end = start
			}
		}
	}
	return Select(base, start, end)
}

func (w Window) String() string {
	switch {
	case w.ByIndex:
		return fmt.Sprintf("index[%d:%d]", w.From, w.To)
	case w.IsZero():
		return "all"
	}
	var b strings.Builder
	b.WriteString("time[")
	if !w.Start.IsZero() {
		b.WriteString(vibration.FormatCanonical(w.Start))
	}
	b.WriteString(" - ")
	if !w.End.IsZero() {
		b.WriteString(vibration.FormatCanonical(w.End))
	}
	b.WriteString("]")
	return b.String()
}

// ParseWindow builds a window from user-supplied strings, as found in query
// parameters or command-line flags. Times are accepted in either the
// canonical or the device layout. Empty strings leave that bound open.
func ParseWindow(start, end, from, to string) (Window, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	byTime := start != "" || end != ""
	byIndex := from != "" || to != ""
	if byTime && byIndex {
		return Window{}, fmt.Errorf("%w: use either start/end or from/to, not both", ErrInvalidRange)
	}

	var w Window
	if byIndex {
		w.ByIndex = true
		w.To = -1
		if from != "" {
			n, err := cast.ToIntE(from)
			if err != nil {
				return Window{}, fmt.Errorf("%w: from %q is not an index", ErrInvalidRange, from)
			}
			w.From = n
		}
		if to != "" {
			n, err := cast.ToIntE(to)
			if err != nil || n < -1 {
				return Window{}, fmt.Errorf("%w: to %q is not an index", ErrInvalidRange, to)
			}
			w.To = n
		}
		return w, nil
	}

	var err error
	if start != "" {
		if w.Start, err = vibration.ParseBound(start); err != nil {
			return Window{}, err
		}
	}
	if end != "" {
		if w.End, err = vibration.ParseBound(end); err != nil {
			return Window{}, err
		}
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.Start.After(w.End) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}
	return w, nil
}
