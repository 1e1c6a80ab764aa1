// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
)

// SampleConfig is the commented configuration written by "vibetable init".
// Every value shown is the default.
const SampleConfig = `// vibetable configuration (HJSON)
{
  server: {
    host: "127.0.0.1"
    port: 8000
  }

  ingest: {
    // Largest document accepted by PUT /api/v1/documents/latest.
    // Negative disables the limit.
    max_document_bytes: 33554432
  }

  convert: {
    // Fault label stamped on every row: 0-5 or a name such as "bearing".
    // Leave empty for an unlabeled table.
    label: ""
    // Reject documents with malformed values instead of leaving cells empty.
    strict: false
    // Export file prefix. Supports {{.Label}}, {{.Source}}, {{.ID}} and
    // {{date "20060102" .Time}}. Empty means converted_<YYYYmmdd_HHMMSS>.
    file_prefix: ""
    output_dir: "."
  }

  inbox: {
    // Directory watched for log files. Empty disables the inbox.
    dir: ""
    pattern: "*.txt"
    debounce: "250ms"
    // Convert each ingested file and write both CSVs to convert.output_dir.
    auto_convert: false
  }

  events: {
    history: {
      max_events: 1000
      max_age: "1h"
    }
  }

  client: {
    api_url: "http://127.0.0.1:8000"
    timeout: "15s"
    retries: 2
  }
}
`

// WriteSample writes SampleConfig to path. It refuses to overwrite an
// existing file.
func WriteSample(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists", path)
		}
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := f.WriteString(SampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
