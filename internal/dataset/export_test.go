// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/vibetable/internal/vibration"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		cell vibration.Cell
		want string
	}{
		{vibration.Num(0.12), "0.12"},
		{vibration.Num(3), "3.0"},
		{vibration.Num(-2), "-2.0"},
		{vibration.Num(0), "0.0"},
		{vibration.Num(0.0001), "0.0001"},
		{vibration.Num(1e-7), "1e-07"},
		{vibration.Num(1234567.5), "1234567.5"},
		{vibration.Num(1e15), "1000000000000000.0"},
		{vibration.Num(1e16), "1e+16"},
		{vibration.Num(-1e300), "-1e+300"},
		{vibration.Num(1.5e20), "1.5e+20"},
		{vibration.Cell{}, ""},
		{vibration.Cell{Value: math.NaN(), Valid: true}, ""},
		{vibration.Cell{Value: math.Inf(1), Valid: true}, ""},
		{vibration.Cell{Value: math.Inf(-1), Valid: true}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.cell))
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteWideCSV(t *testing.T) {
	wide := mustMaterialize(t, workedExample, vibration.LabelBearing.Ptr())

	var buf bytes.Buffer
	require.NoError(t, WriteWideCSV(&buf, wide))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, WideColumns(true), records[0])

	row := records[1]
	require.Len(t, row, 59)
	assert.Equal(t, "04/07/2024 14:05:09", row[0])
	assert.Equal(t, "0.12", row[1]) // Parameter-1_X
	assert.Equal(t, "", row[2])     // Parameter-1_Y
	assert.Equal(t, "0.88", row[4]) // Parameter-2_X
	assert.Equal(t, "25.5", row[10])
	assert.Equal(t, "75.0", row[22]) // Parameter-8_X
	assert.Equal(t, "2", row[58])
}

func TestWriteLongCSV(t *testing.T) {
	long := Expand(mustMaterialize(t, workedExample, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteLongCSV(&buf, long))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, LongColumns(false), records[0])
	for _, r := range records[1:] {
		require.Len(t, r, 20)
		assert.Equal(t, "04/07/2024 14:05:09", r[0])
	}
	assert.Equal(t, "0.12", records[1][1])
	assert.Equal(t, ",,,,,,,,,,,,,,,,,,", strings.Join(records[2][1:], ","))
}

func TestWriteEmptyTables(t *testing.T) {
	base := mustMaterialize(t, sampleLog(2), vibration.LabelNormal.Ptr())
	empty, err := Select(base, sec(50), sec(60))
	require.NoError(t, err)

	var wide, long bytes.Buffer
	require.NoError(t, WriteWideCSV(&wide, empty))
	require.NoError(t, WriteLongCSV(&long, Expand(empty)))

	assert.Equal(t, [][]string{WideColumns(true)}, readCSV(t, wide.Bytes()))
	assert.Equal(t, [][]string{LongColumns(true)}, readCSV(t, long.Bytes()))
}

func TestExportNames(t *testing.T) {
	now := time.Date(2024, 7, 4, 14, 5, 9, 0, time.UTC)

	wide, long := ExportNames("pump7", now)
	assert.Equal(t, "pump7_57.csv", wide)
	assert.Equal(t, "pump7_19.csv", long)

	wide, long = ExportNames("  ", now)
	assert.Equal(t, "converted_20240704_140509_57.csv", wide)
	assert.Equal(t, "converted_20240704_140509_19.csv", long)
}

func TestExportFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	wide := mustMaterialize(t, sampleLog(3), nil)
	view := &View{Wide: wide, Long: Expand(wide)}

	widePath, longPath, err := ExportFiles(dir, "run", view)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_57.csv"), widePath)
	assert.Equal(t, filepath.Join(dir, "run_19.csv"), longPath)

	data, err := os.ReadFile(widePath)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 4)

	data, err = os.ReadFile(longPath)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 10)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}
