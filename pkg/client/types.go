// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Document is the stored log.
type Document struct {
	Content  string    `json:"content"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`

	// Source names the producer: "http", "upload" or "inbox:<file>".
	Source string `json:"source,omitempty"`
}

// DocumentInfo describes a stored document without its content.
type DocumentInfo struct {
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
	Source   string    `json:"source,omitempty"`
}

// Diagnostic is a line the parser skipped.
type Diagnostic struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Dataset summarizes the current conversion.
type Dataset struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`

	// Label is the fault label value, nil when unlabeled.
	Label     *int   `json:"label"`
	LabelName string `json:"label_name,omitempty"`

	// Rows is the wide row count; LongRows is always three times Rows.
	Rows     int `json:"rows"`
	LongRows int `json:"long_rows"`
	Lines    int `json:"lines"`

	// Start and End bound the timestamps, formatted dd/mm/yyyy HH:MM:SS.
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	ConvertedAt time.Time    `json:"converted_at"`
	DurationMS  float64      `json:"duration_ms"`
}

// Label is one fault label.
type Label struct {
	Value   int    `json:"value"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// Event is an entry in the server's event history.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Export is a downloaded CSV table.
type Export struct {
	// Filename is the name suggested by the server.
	Filename string

	// Rows is the number of data rows, excluding the header.
	Rows int

	Data []byte
}
