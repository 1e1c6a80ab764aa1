// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// timestampLineRe recognizes a line that looks like a record timestamp.
	// Canonicalization is a separate, stricter step.
	timestampLineRe = regexp.MustCompile(`^\d+/\d+/\d+\s+\d+:\d+:\d+\s+(AM|PM)`)

	axisHeaderRe = regexp.MustCompile(`\b([XYZ])\s+Axis:$`)
	parameterRe  = regexp.MustCompile(`^Parameter-(\d+)$`)
	peakNewRe    = regexp.MustCompile(`^Peak\s+(\d+)\s+Parameter-\d+\s+([-\d.]+)\s+Parameter-\d+\s+([-\d.]+)`)
	peakLegacyRe = regexp.MustCompile(`^Peak\s+(\d+)\s+Freq\s+([-\d.]+)\s+Mag\s+([-\d.]+)`)
)

// namedScalars are the legacy line prefixes aliasing the scalar slots.
var namedScalars = []struct {
	prefix string
	slot   Slot
}{
	{"RMS", SlotNoiseA},
	{"PP", SlotNoiseB},
	{"Kurtosis", SlotNoiseC},
}

// isTimestampLine reports whether line starts a new record.
func isTimestampLine(line string) bool {
	return timestampLineRe.MatchString(line)
}

// axisHeader classifies a section header line. ok is true for any line ending
// in "Axis:"; known is true only when the axis letter is X, Y or Z.
func axisHeader(line string) (axis Axis, known bool, ok bool) {
	if !strings.HasSuffix(line, "Axis:") {
		return 0, false, false
	}
	m := axisHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false, true
	}
	a, _ := ParseAxis(m[1])
	return a, true, true
}

// lineKind tags the outcome of a line rule.
type lineKind int

const (
	// kindScalar sets one of the scalar slots.
	kindScalar lineKind = iota + 1
	// kindConsumed is a recognized line that carries nothing we keep,
	// such as Parameter-20.
	kindConsumed
	// kindPeak records a peak's location and magnitude.
	kindPeak
)

// lineMatch is the classification of a single value line.
type lineMatch struct {
	kind  lineKind
	rule  string
	slot  Slot
	peak  int
	raw   [2]string
	valid [2]bool
	value [2]float64
}

// lineRule classifies a trimmed line inside an axis section.
type lineRule struct {
	name  string
	match func(line string, fields []string) (lineMatch, bool)
}

// sectionRules are evaluated in order; the first match wins.
var sectionRules = []lineRule{
	{name: "parameter", match: matchParameterLine},
	{name: "named-scalar", match: matchNamedScalar},
	{name: "peak", match: matchPeakLine},
}

// classify runs the section rules against line.
func classify(line string) (lineMatch, bool) {
	fields := strings.Fields(line)
	for _, r := range sectionRules {
		if m, ok := r.match(line, fields); ok {
			m.rule = r.name
			return m, true
		}
	}
	return lineMatch{}, false
}

// parseNumber accepts finite decimal numbers only. inf, nan and hex floats
// are reported as bad values.
func parseNumber(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func fieldAt(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// matchParameterLine handles "Parameter-N value".
func matchParameterLine(_ string, fields []string) (lineMatch, bool) {
	if len(fields) == 0 {
		return lineMatch{}, false
	}
	m := parameterRe.FindStringSubmatch(fields[0])
	if m == nil {
		return lineMatch{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > NumScalars {
		return lineMatch{kind: kindConsumed}, true
	}
	raw := fieldAt(fields, 1)
	v, ok := parseNumber(raw)
	return lineMatch{
		kind:  kindScalar,
		slot:  Slot(n),
		raw:   [2]string{raw},
		valid: [2]bool{ok},
		value: [2]float64{v},
	}, true
}

// matchNamedScalar handles the legacy RMS, PP and Kurtosis lines.
func matchNamedScalar(line string, fields []string) (lineMatch, bool) {
	for _, ns := range namedScalars {
		if !strings.HasPrefix(line, ns.prefix) {
			continue
		}
		raw := fieldAt(fields, 1)
		v, ok := parseNumber(raw)
		return lineMatch{
			kind:  kindScalar,
			slot:  ns.slot,
			raw:   [2]string{raw},
			valid: [2]bool{ok},
			value: [2]float64{v},
		}, true
	}
	return lineMatch{}, false
}

// matchPeakLine handles both peak encodings:
//
//	Peak 3 Parameter-8 120.5 Parameter-9 0.031
//	Peak 3 Freq 120.5 Mag 0.031
func matchPeakLine(line string, _ []string) (lineMatch, bool) {
	m := peakNewRe.FindStringSubmatch(line)
	if m == nil {
		m = peakLegacyRe.FindStringSubmatch(line)
	}
	if m == nil {
		return lineMatch{}, false
	}
	p, err := strconv.Atoi(m[1])
	if err != nil {
		p = -1
	}
	loc, locOK := parseNumber(m[2])
	mag, magOK := parseNumber(m[3])
	return lineMatch{
		kind:  kindPeak,
		peak:  p,
		raw:   [2]string{m[2], m[3]},
		valid: [2]bool{locOK, magOK},
		value: [2]float64{loc, mag},
	}, true
}
