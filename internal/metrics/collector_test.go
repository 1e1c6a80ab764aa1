// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	c.Register(reg)

	c.ObserveDocument("http", 10)
	c.ObserveConversion("ok", 1, 0, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vibetable_documents_stored_total")
	assert.Contains(t, names, "vibetable_conversion_duration_seconds")
	assert.Contains(t, names, "vibetable_dataset_rows")

	assert.Panics(t, func() { c.Register(reg) }, "double registration")
}

func TestObserveDocument(t *testing.T) {
	c := NewCollector()
	c.ObserveDocument("http", 100)
	c.ObserveDocument("http", 50)
	c.ObserveDocument("inbox", 7)
	c.ObserveRejected()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DocumentsStored.WithLabelValues("http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DocumentsStored.WithLabelValues("inbox")))
	assert.Equal(t, 157.0, testutil.ToFloat64(c.DocumentBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DocumentsRejected))
}

func TestObserveConversion(t *testing.T) {
	c := NewCollector()
	c.ObserveConversion("ok", 12, 2, 5*time.Millisecond)
	c.ObserveConversion("empty", 0, 0, time.Millisecond)
	c.SetDatasetRows(12)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Conversions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Conversions.WithLabelValues("empty")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.RecordsParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Diagnostics))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.DatasetRows))

	expected := `
# HELP vibetable_conversions_total Total number of conversions, by result.
# TYPE vibetable_conversions_total counter
vibetable_conversions_total{result="empty"} 1
vibetable_conversions_total{result="ok"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c.Conversions, strings.NewReader(expected)))
}
