// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Options controls parser behavior.
type Options struct {
	// Strict turns the first unreadable number on a recognized value line
	// into an ErrMalformedValue error instead of a diagnostic.
	Strict bool
}

// Diagnostic describes a recognized line whose content could not be used.
type Diagnostic struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

// ParseResult is the output of a parse.
type ParseResult struct {
	Records     []FlatRecord
	Diagnostics []Diagnostic
	// Lines is the number of input lines scanned.
	Lines int
}

// Parser converts raw log text into flat records.
type Parser struct {
	opts Options
}

// NewParser creates a parser with the given options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse parses text with default (tolerant) options and returns the records.
// An input with no timestamp lines yields an empty slice and no error.
func Parse(text string) ([]FlatRecord, error) {
	res, err := NewParser(Options{}).Parse(text)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Parse parses text.
func (p *Parser) Parse(text string) (*ParseResult, error) {
	return p.ParseReader(strings.NewReader(text))
}

// ParseReader parses a log read from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	res := &ParseResult{}
	var b *recordBuilder

	flush := func() {
		if b == nil {
			return
		}
		res.Records = append(res.Records, b.finish())
		b = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if isTimestampLine(line) {
			ts, err := ParseSource(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			flush()
			b = newRecordBuilder(ts)
			continue
		}

		// Content before the first timestamp is not part of any record.
		if b == nil {
			continue
		}

		if axis, known, ok := axisHeader(line); ok {
			b.closeSection()
			if known {
				b.openSection(axis)
			}
			continue
		}

		if !b.inSection {
			continue
		}

		m, ok := classify(line)
		if !ok {
			continue
		}
		if diag, bad := b.apply(m, lineNo, line); bad {
			if p.opts.Strict {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedValue, line)
			}
			res.Diagnostics = append(res.Diagnostics, diag)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	flush()
	res.Lines = lineNo
	return res, nil
}

// recordBuilder accumulates one record while its lines are scanned.
type recordBuilder struct {
	rec       FlatRecord
	axis      Axis
	inSection bool
	peaks     map[int][2]Cell
}

func newRecordBuilder(ts time.Time) *recordBuilder {
	return &recordBuilder{
		rec: FlatRecord{Timestamp: ts, Values: make(map[Key]Cell)},
	}
}

// openSection starts a section for axis a. Peaks from an earlier section of
// the same axis are discarded.
func (b *recordBuilder) openSection(a Axis) {
	b.axis = a
	b.inSection = true
	b.peaks = make(map[int][2]Cell)
	for p := 1; p <= NumPeaks; p++ {
		delete(b.rec.Values, Key{Slot: PeakLocation(p), Axis: a})
		delete(b.rec.Values, Key{Slot: PeakMagnitude(p), Axis: a})
	}
}

// closeSection writes the peaks seen in the section into the record. Peaks
// that were never reported stay absent.
func (b *recordBuilder) closeSection() {
	if !b.inSection {
		return
	}
	for p, cells := range b.peaks {
		b.set(PeakLocation(p), cells[0])
		b.set(PeakMagnitude(p), cells[1])
	}
	b.inSection = false
	b.peaks = nil
}

func (b *recordBuilder) set(slot Slot, c Cell) {
	b.rec.Values[Key{Slot: slot, Axis: b.axis}] = c
}

func cellOf(m lineMatch, i int) Cell {
	if !m.valid[i] {
		return Cell{}
	}
	return Num(m.value[i])
}

// apply records the effect of a classified line. It returns a diagnostic and
// true when the line was recognized but carried an unusable value.
func (b *recordBuilder) apply(m lineMatch, lineNo int, line string) (Diagnostic, bool) {
	switch m.kind {
	case kindScalar:
		b.set(m.slot, cellOf(m, 0))
		if !m.valid[0] {
			return Diagnostic{Line: lineNo, Text: line, Reason: fmt.Sprintf("%s: bad value %q for %s", m.rule, m.raw[0], m.slot.Name())}, true
		}
	case kindPeak:
		if m.peak < 1 || m.peak > NumPeaks {
			return Diagnostic{Line: lineNo, Text: line, Reason: fmt.Sprintf("peak index %d out of range 1-%d", m.peak, NumPeaks)}, true
		}
		b.peaks[m.peak] = [2]Cell{cellOf(m, 0), cellOf(m, 1)}
		if !m.valid[0] || !m.valid[1] {
			return Diagnostic{Line: lineNo, Text: line, Reason: fmt.Sprintf("peak %d: bad value %q/%q", m.peak, m.raw[0], m.raw[1])}, true
		}
	}
	return Diagnostic{}, false
}

func (b *recordBuilder) finish() FlatRecord {
	b.closeSection()
	return b.rec
}
