// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wingedpig/vibetable/internal/vibration"
)

const (
	WideSuffix = "_57.csv"
	LongSuffix = "_19.csv"
)

// FormatNumber renders a cell the way exported tables expect: shortest
// round-trip decimal with ".0" on integral values, switching to exponent form
// (1e+16, 1e-05) outside [1e-4, 1e16). Missing and non-finite cells render as
// an empty field.
func FormatNumber(c vibration.Cell) string {
	if !c.Valid || math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return ""
	}
	if abs := math.Abs(c.Value); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(c.Value, 'e', -1, 64)
	}
	s := strconv.FormatFloat(c.Value, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func labelField(l vibration.Label, ok bool) []string {
	if !ok {
		return nil
	}
	return []string{strconv.Itoa(int(l))}
}

// WriteWideCSV writes t with its header. An empty table produces the header
// only.
func WriteWideCSV(w io.Writer, t *WideTable) error {
	cw := csv.NewWriter(w)
	label, labeled := t.Label()
	if err := cw.Write(WideColumns(labeled)); err != nil {
		return err
	}
	rec := make([]string, 0, 2+vibration.NumSlots*vibration.NumAxes)
	for i := 0; i < t.Len(); i++ {
		r := &t.rows[i]
		rec = append(rec[:0], r.TimeString())
		for s := 0; s < vibration.NumSlots; s++ {
			for a := 0; a < vibration.NumAxes; a++ {
				rec = append(rec, FormatNumber(r.Cells[s][a]))
			}
		}
		rec = append(rec, labelField(label, labeled)...)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLongCSV writes t with its header. An empty table produces the header
// only.
func WriteLongCSV(w io.Writer, t *LongTable) error {
	cw := csv.NewWriter(w)
	label, labeled := t.Label()
	if err := cw.Write(LongColumns(labeled)); err != nil {
		return err
	}
	rec := make([]string, 0, 2+vibration.NumSlots)
	for i := 0; i < t.Len(); i++ {
		r := &t.rows[i]
		rec = append(rec[:0], vibration.FormatCanonical(r.Time))
		for s := 0; s < vibration.NumSlots; s++ {
			rec = append(rec, FormatNumber(r.Cells[s]))
		}
		rec = append(rec, labelField(label, labeled)...)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DefaultPrefix returns the file prefix used when none is configured.
func DefaultPrefix(now time.Time) string {
	return "converted_" + now.Format("20060102_150405")
}

// ExportNames returns the wide and long file names for prefix. An empty
// prefix falls back to DefaultPrefix(now).
func ExportNames(prefix string, now time.Time) (wide, long string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix(now)
	}
	return prefix + WideSuffix, prefix + LongSuffix
}

// ExportFiles writes both tables of v into dir and returns the paths written.
func ExportFiles(dir, prefix string, v *View) (widePath, longPath string, err error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating output dir: %w", err)
	}
	wideName, longName := ExportNames(prefix, time.Now())
	widePath = filepath.Join(dir, wideName)
	longPath = filepath.Join(dir, longName)

	if err := writeFile(widePath, func(w io.Writer) error { return WriteWideCSV(w, v.Wide) }); err != nil {
		return "", "", err
	}
	if err := writeFile(longPath, func(w io.Writer) error { return WriteLongCSV(w, v.Long) }); err != nil {
		return "", "", err
	}
	return widePath, longPath, nil
}

// writeFile writes through a temp file and renames it into place.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
