// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Label is an operating-condition category attached to every row of a
// converted dataset.
type Label int

const (
	LabelNormal Label = iota
	LabelSealFailure
	LabelBearing
	LabelShaftMisalignment
	LabelUnbalanceImpeller
	LabelCavitation
)

var labelNames = [...]struct {
	display string
	short   string
}{
	LabelNormal:            {"Normal_Mode(0)", "normal"},
	LabelSealFailure:       {"Seal Failure(1)", "seal_failure"},
	LabelBearing:           {"Bearing(2)", "bearing"},
	LabelShaftMisalignment: {"Shaft Misalignment(3)", "shaft_misalignment"},
	LabelUnbalanceImpeller: {"Unbalance_impeller(4)", "unbalance_impeller"},
	LabelCavitation:        {"Cavitation(5)", "cavitation"},
}

// Labels returns every label in ascending order.
func Labels() []Label {
	out := make([]Label, len(labelNames))
	for i := range out {
		out[i] = Label(i)
	}
	return out
}

// Valid reports whether l is part of the enumeration.
func (l Label) Valid() bool {
	return l >= 0 && int(l) < len(labelNames)
}

// String returns the display name, e.g. "Bearing(2)".
func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l].display
}

// Name returns the short snake-case name, e.g. "bearing".
func (l Label) Name() string {
	if !l.Valid() {
		return ""
	}
	return labelNames[l].short
}

// Ptr returns a pointer to a copy of l.
func (l Label) Ptr() *Label {
	return &l
}

// ParseLabel accepts a display name, a short name, or the integer value.
// Name matching ignores case and surrounding whitespace.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownLabel)
	}
	for i, n := range labelNames {
		if strings.EqualFold(s, n.display) || strings.EqualFold(s, n.short) {
			return Label(i), nil
		}
	}
	n, err := cast.ToIntE(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	l := Label(n)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLabel, n)
	}
	return l, nil
}

// ParseLabelValue accepts a decoded JSON or HJSON value: a string, an integer,
// or an integral float. A nil value yields (nil, nil), meaning no label.
func ParseLabelValue(v interface{}) (*Label, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		l, err := ParseLabel(x)
		if err != nil {
			return nil, err
		}
		return &l, nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownLabel, x)
		}
	case bool:
		return nil, fmt.Errorf("%w: %v", ErrUnknownLabel, x)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLabel, v)
	}
	l := Label(n)
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, n)
	}
	return &l, nil
}
