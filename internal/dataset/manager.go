// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wingedpig/vibetable/internal/events"
	"github.com/wingedpig/vibetable/internal/vibration"
)

// ErrNoDataset is returned when an operation needs a converted dataset and
// none is installed.
var ErrNoDataset = errors.New("no dataset converted")

// Conversion results reported to the Recorder.
const (
	ResultOK                 = "ok"
	ResultEmpty              = "empty"
	ResultMalformedTimestamp = "malformed_timestamp"
	ResultMalformedValue     = "malformed_value"
	ResultError              = "error"
)

// Dataset is one successful conversion. It is never modified once installed.
type Dataset struct {
	ID          string
	Source      string
	Label       *vibration.Label
	Records     []vibration.FlatRecord
	Diagnostics []vibration.Diagnostic
	Lines       int
	ConvertedAt time.Time
	Duration    time.Duration

	// Base is the immutable wide table; Full is its long projection.
	Base *WideTable
	Full *LongTable
}

// Summary is the JSON description of a dataset.
type Summary struct {
	ID          string                 `json:"id"`
	Source      string                 `json:"source,omitempty"`
	Label       *int                   `json:"label"`
	// LabelName is the short label name, e.g. "bearing".
	LabelName   string                 `json:"label_name,omitempty"`
	Rows        int                    `json:"rows"`
	LongRows    int                    `json:"long_rows"`
	Lines       int                    `json:"lines"`
	Start       string                 `json:"start,omitempty"`
	End         string                 `json:"end,omitempty"`
	Diagnostics []vibration.Diagnostic `json:"diagnostics,omitempty"`
	ConvertedAt time.Time              `json:"converted_at"`
	DurationMS  float64                `json:"duration_ms"`
}

// Summary describes d.
func (d *Dataset) Summary() Summary {
	s := Summary{
		ID:          d.ID,
		Source:      d.Source,
		Rows:        d.Base.Len(),
		LongRows:    d.Full.Len(),
		Lines:       d.Lines,
		Diagnostics: d.Diagnostics,
		ConvertedAt: d.ConvertedAt,
		DurationMS:  float64(d.Duration) / float64(time.Millisecond),
	}
	if d.Label != nil {
		n := int(*d.Label)
		s.Label = &n
		s.LabelName = d.Label.Name()
	}
	if min, max, ok := TimeRange(d.Base); ok {
		s.Start = vibration.FormatCanonical(min)
		s.End = vibration.FormatCanonical(max)
	}
	return s
}

// ConvertOptions controls a conversion.
type ConvertOptions struct {
	Label  *vibration.Label
	Strict bool
	// Source names where the text came from, e.g. "http" or "inbox:a.txt".
	Source string
}

// View is a derived pair of tables.
type View struct {
	Wide *WideTable
	Long *LongTable
}

// Recorder receives conversion measurements.
type Recorder interface {
	ObserveConversion(result string, records, diagnostics int, d time.Duration)
	SetDatasetRows(n int)
}

// Manager owns the current dataset. Readers always see a complete dataset
// or none; writers are serialized and replace the dataset wholesale.
type Manager struct {
	mu      sync.Mutex
	current atomic.Pointer[Dataset]
	bus     events.Publisher
	rec     Recorder
	now     func() time.Time
}

// NewManager creates a manager. bus and rec may be nil.
func NewManager(bus events.Publisher, rec Recorder) *Manager {
	return &Manager{bus: bus, rec: rec, now: time.Now}
}

// Current returns the installed dataset, or nil.
func (m *Manager) Current() *Dataset {
	return m.current.Load()
}

// Convert parses text and installs the result as the current dataset. On
// error the previous dataset stays installed.
func (m *Manager) Convert(ctx context.Context, text string, opts ConvertOptions) (*Dataset, error) {
	start := m.now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := m.build(text, opts)
	elapsed := m.now().Sub(start)
	if err != nil {
		m.observe(resultOf(err), 0, 0, elapsed)
		log.Printf("Dataset: conversion from %q failed: %v", opts.Source, err)
		events.Emit(ctx, m.bus, events.EventDatasetFailed, opts.Source, map[string]interface{}{
			"error":  err.Error(),
			"result": resultOf(err),
		})
		return nil, err
	}
	ds.Duration = elapsed

	m.mu.Lock()
	m.current.Store(ds)
	m.mu.Unlock()

	m.observe(ResultOK, len(ds.Records), len(ds.Diagnostics), elapsed)
	if m.rec != nil {
		m.rec.SetDatasetRows(ds.Base.Len())
	}
	log.Printf("Dataset: converted %d records (%d diagnostics) from %q in %v", len(ds.Records), len(ds.Diagnostics), ds.Source, elapsed)
	m.publishConverted(ctx, ds, false)
	return ds, nil
}

func (m *Manager) build(text string, opts ConvertOptions) (*Dataset, error) {
	res, err := vibration.NewParser(vibration.Options{Strict: opts.Strict}).Parse(text)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("%w: no timestamp lines in %d input lines", ErrEmptyInput, res.Lines)
	}
	base, err := Materialize(res.Records, opts.Label)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		ID:          uuid.NewString(),
		Source:      opts.Source,
		Label:       copyLabel(opts.Label),
		Records:     res.Records,
		Diagnostics: res.Diagnostics,
		Lines:       res.Lines,
		ConvertedAt: m.now(),
		Base:        base,
		Full:        Expand(base),
	}, nil
}

// Relabel re-materializes the current dataset's records with a new label and
// installs the result. Value columns are unchanged. A nil label removes it.
func (m *Manager) Relabel(ctx context.Context, label *vibration.Label) (*Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	if cur == nil {
		return nil, ErrNoDataset
	}
	start := m.now()
	base, err := Materialize(cur.Records, label)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		ID:          uuid.NewString(),
		Source:      cur.Source,
		Label:       copyLabel(label),
		Records:     cur.Records,
		Diagnostics: cur.Diagnostics,
		Lines:       cur.Lines,
		ConvertedAt: m.now(),
		Base:        base,
		Full:        Expand(base),
	}
	ds.Duration = m.now().Sub(start)
	m.current.Store(ds)

	log.Printf("Dataset: relabeled %s as %s", cur.ID, labelName(label))
	m.publishConverted(ctx, ds, true)
	return ds, nil
}

// Clear removes the current dataset. It reports whether one was installed.
func (m *Manager) Clear(ctx context.Context) bool {
	m.mu.Lock()
	old := m.current.Swap(nil)
	m.mu.Unlock()

	if old == nil {
		return false
	}
	if m.rec != nil {
		m.rec.SetDatasetRows(0)
	}
	events.Emit(ctx, m.bus, events.EventDatasetCleared, old.Source, map[string]interface{}{"id": old.ID})
	return true
}

// View derives the wide and long tables selected by w from the current base
// table. The raw text is never re-parsed.
func (m *Manager) View(w Window) (*View, error) {
	cur := m.current.Load()
	if cur == nil {
		return nil, ErrNoDataset
	}
	return cur.View(w)
}

// View derives the tables selected by w.
func (d *Dataset) View(w Window) (*View, error) {
	if w.IsZero() {
		return &View{Wide: d.Base, Long: d.Full}, nil
	}
	wide, err := w.Apply(d.Base)
	if err != nil {
		return nil, err
	}
	return &View{Wide: wide, Long: Expand(wide)}, nil
}

func (m *Manager) observe(result string, records, diags int, d time.Duration) {
	if m.rec != nil {
		m.rec.ObserveConversion(result, records, diags, d)
	}
}

func (m *Manager) publishConverted(ctx context.Context, ds *Dataset, relabel bool) {
	payload := map[string]interface{}{
		"id":          ds.ID,
		"rows":        ds.Base.Len(),
		"long_rows":   ds.Full.Len(),
		"diagnostics": len(ds.Diagnostics),
		"relabel":     relabel,
	}
	if ds.Label != nil {
		payload["label"] = int(*ds.Label)
	}
	events.Emit(ctx, m.bus, events.EventDatasetConverted, ds.Source, payload)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return ResultEmpty
	case errors.Is(err, vibration.ErrMalformedTimestamp):
		return ResultMalformedTimestamp
	case errors.Is(err, vibration.ErrMalformedValue):
		return ResultMalformedValue
	default:
		return ResultError
	}
}

func copyLabel(l *vibration.Label) *vibration.Label {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func labelName(l *vibration.Label) string {
	if l == nil {
		return "unlabeled"
	}
	return l.String()
}
