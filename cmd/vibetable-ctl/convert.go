// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wingedpig/vibetable/internal/config"
	"github.com/wingedpig/vibetable/internal/dataset"
	"github.com/wingedpig/vibetable/internal/vibration"
)

// convertConfig holds the parsed convert options.
type convertConfig struct {
	inputs     []string
	label      string
	strict     bool
	prefix     string
	outDir     string
	start, end string
	from, to   string
}

// convertResult is what cmdConvert reports.
type convertResult struct {
	Dataset  dataset.Summary `json:"dataset"`
	Wide     string          `json:"wide"`
	Long     string          `json:"long"`
	WideRows int             `json:"wide_rows"`
	LongRows int             `json:"long_rows"`
}

func parseConvertArgs(args []string) (*convertConfig, error) {
	cfg := &convertConfig{outDir: "."}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-strict" {
			cfg.strict = true
			continue
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("missing value for %s", arg)
		}
		val := args[i+1]
		i++

		switch arg {
		case "-in":
			cfg.inputs = append(cfg.inputs, val)
		case "-label":
			cfg.label = val
		case "-prefix":
			cfg.prefix = val
		case "-out":
			cfg.outDir = val
		case "-start":
			cfg.start = val
		case "-end":
			cfg.end = val
		case "-from":
			cfg.from = val
		case "-to":
			cfg.to = val
		default:
			return nil, fmt.Errorf("unknown option: %s", arg)
		}
	}

	return cfg, nil
}

func cmdConvert(args []string) error {
	cfg, err := parseConvertArgs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	text, source, err := convertInput(ctx, cfg.inputs)
	if err != nil {
		return err
	}

	res, err := convertLocal(ctx, text, source, cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	for _, d := range res.Dataset.Diagnostics {
		fmt.Printf("Skipped line %d: %s: %q\n", d.Line, d.Reason, d.Text)
	}
	fmt.Printf("Wrote %d rows to %s\n", res.WideRows, res.Wide)
	fmt.Printf("Wrote %d rows to %s\n", res.LongRows, res.Long)
	return nil
}

// convertInput reads and joins the input files. With none it fetches the
// server's latest log.
func convertInput(ctx context.Context, inputs []string) (text, source string, err error) {
	if len(inputs) == 0 {
		content, ok, err := apiClient.Documents.Latest(ctx)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "", "", errNoDocument
		}
		return content, apiURL, nil
	}

	parts := make([]string, len(inputs))
	names := make([]string, len(inputs))
	for i, in := range inputs {
		if parts[i], err = readInput(in); err != nil {
			return "", "", err
		}
		names[i] = filepath.Base(in)
		if in == "-" {
			names[i] = "stdin"
		}
	}
	return strings.Join(parts, "\n"), strings.Join(names, ","), nil
}

// convertLocal converts text and writes both CSV files into cfg.outDir.
func convertLocal(ctx context.Context, text, source string, cfg *convertConfig) (*convertResult, error) {
	label, err := vibration.ParseLabelValue(cfg.label)
	if err != nil {
		return nil, err
	}

	window, err := dataset.ParseWindow(cfg.start, cfg.end, cfg.from, cfg.to)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewManager(nil, nil).Convert(ctx, text, dataset.ConvertOptions{
		Label:  label,
		Strict: cfg.strict,
		Source: source,
	})
	if err != nil {
		return nil, err
	}

	view, err := ds.View(window)
	if err != nil {
		return nil, err
	}

	prefix := cfg.prefix
	if prefix != "" {
		name := ""
		if ds.Label != nil {
			name = ds.Label.Name()
		}
		prefix, err = config.NewTemplateExpander().ExpandPrefix(prefix, &config.PrefixContext{
			ID:     ds.ID,
			Label:  name,
			Source: ds.Source,
			Time:   ds.ConvertedAt,
		})
		if err != nil {
			return nil, err
		}
	}

	wide, long, err := dataset.ExportFiles(cfg.outDir, prefix, view)
	if err != nil {
		return nil, err
	}

	return &convertResult{
		Dataset:  ds.Summary(),
		Wide:     wide,
		Long:     long,
		WideRows: view.Wide.Len(),
		LongRows: view.Long.Len(),
	}, nil
}
