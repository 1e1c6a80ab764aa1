// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus metrics for ingestion and conversion.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vibetable"

// Collector holds the process metrics. The zero value is not usable; call
// NewCollector.
type Collector struct {
	DocumentsStored    *prometheus.CounterVec
	DocumentBytes      prometheus.Counter
	DocumentsRejected  prometheus.Counter
	Conversions        *prometheus.CounterVec
	RecordsParsed      prometheus.Counter
	Diagnostics        prometheus.Counter
	ConversionDuration prometheus.Histogram
	DatasetRows        prometheus.Gauge
}

// NewCollector creates the metrics without registering them.
func NewCollector() *Collector {
	return &Collector{
		DocumentsStored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_stored_total",
				Help:      "Total number of documents stored, by producer.",
			},
			[]string{"producer"},
		),
		DocumentBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_bytes_total",
				Help:      "Total bytes of document content stored.",
			},
		),
		DocumentsRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_rejected_total",
				Help:      "Total number of documents rejected for size.",
			},
		),
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions, by result.",
			},
			[]string{"result"},
		),
		RecordsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_parsed_total",
				Help:      "Total number of records produced by successful conversions.",
			},
		),
		Diagnostics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_diagnostics_total",
				Help:      "Total number of recognized lines with unusable values.",
			},
		),
		ConversionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Time spent parsing and materializing a document.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		DatasetRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_rows",
				Help:      "Rows in the current wide table.",
			},
		),
	}
}

// Register registers every metric with reg.
func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.DocumentsStored,
		c.DocumentBytes,
		c.DocumentsRejected,
		c.Conversions,
		c.RecordsParsed,
		c.Diagnostics,
		c.ConversionDuration,
		c.DatasetRows,
	)
}

// ObserveDocument records a stored document.
func (c *Collector) ObserveDocument(producer string, size int) {
	c.DocumentsStored.WithLabelValues(producer).Inc()
	c.DocumentBytes.Add(float64(size))
}

// ObserveRejected records a document refused by the store.
func (c *Collector) ObserveRejected() {
	c.DocumentsRejected.Inc()
}

// ObserveConversion records the outcome of one conversion.
func (c *Collector) ObserveConversion(result string, records, diagnostics int, d time.Duration) {
	c.Conversions.WithLabelValues(result).Inc()
	c.ConversionDuration.Observe(d.Seconds())
	c.RecordsParsed.Add(float64(records))
	c.Diagnostics.Add(float64(diagnostics))
}

// SetDatasetRows sets the current dataset size.
func (c *Collector) SetDatasetRows(n int) {
	c.DatasetRows.Set(float64(n))
}
