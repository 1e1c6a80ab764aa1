// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// vibetable-ctl is a command-line tool for a running vibetable server. It
// can also convert logs offline.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wingedpig/vibetable/internal/config"
	"github.com/wingedpig/vibetable/pkg/client"
)

var (
	version    = "0.3"
	apiURL     = "http://127.0.0.1:8000"
	jsonOutput = false

	// API client instance
	apiClient *client.Client
)

func main() {
	timeout := client.DefaultTimeout
	retries := 2

	// Client settings from vibetable.hjson in the current directory, if any
	if cc, ok := loadClientConfig(); ok {
		apiURL = strings.TrimSuffix(cc.APIURL, "/")
		timeout = config.ParseDuration(cc.Timeout, timeout)
		retries = cc.GetRetries()
	}

	// Check for VIBETABLE_API environment variable
	if env := os.Getenv("VIBETABLE_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	// Parse global flags and filter them out
	var filteredArgs []string
	for _, arg := range os.Args[1:] {
		if arg == "-json" {
			jsonOutput = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	// Initialize API client
	apiClient = client.New(apiURL, client.WithTimeout(timeout), client.WithRetry(retries))

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := filteredArgs[0]
	args := filteredArgs[1:]

	var err error
	switch cmd {
	case "put":
		err = cmdPut(args)
	case "latest":
		err = cmdLatest(args)
	case "convert":
		err = cmdConvert(args)
	case "dataset":
		err = cmdDataset(args)
	case "relabel":
		err = cmdRelabel(args)
	case "clear":
		err = cmdClear(args)
	case "export":
		err = cmdExport(args)
	case "labels":
		err = cmdLabels(args)
	case "events":
		err = cmdEvents(args)
	case "version", "-v", "--version":
		fmt.Printf("vibetable-ctl %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vibetable-ctl - Control a vibetable server and convert vibration logs

Usage:
  vibetable-ctl [-json] <command> [arguments]

Global Flags:
  -json          Output in JSON format

Environment:
  VIBETABLE_API  Base URL of the vibetable API (default: client.api_url from
                 vibetable.hjson, else http://127.0.0.1:8000)

Commands:
  put <file|->             Store a log on the server
  latest [-o file]         Print (or save) the latest stored log

  convert [options]        Convert a log locally and write both CSV files
    -in <file|->           Input log (repeatable; files are joined). Default:
                           the server's latest log
    -label <label>         Fault label: 0-5 or a name such as "bearing"
    -strict                Fail on malformed values
    -prefix <prefix>       File name prefix (template allowed)
    -out <dir>             Output directory (default: .)
    -start <time>          Window start (dd/mm/yyyy HH:MM:SS or device format)
    -end <time>            Window end
    -from <index>          Window start row
    -to <index>            Window end row (-1 = last)

  dataset                  Show the server's current dataset
  relabel <label|none>     Change the label of the server's dataset
  clear                    Remove the server's dataset

  export wide|long [options]  Download a table from the server
    -start, -end, -from, -to  Window, as for convert
    -prefix <prefix>       File name prefix
    -o <file|->            Output file (default: the server's file name)

  labels                   List fault labels
  events [options]         Show recent events
    -n N                   Number of events (default: 50)
    -type <pattern>        Filter by type, e.g. dataset.* (can repeat)
    -source <source>       Filter by source
    -since <duration>      Since (e.g., 30m, 2h, 2026-10-19T10:00:00Z)

  version                  Show version
  help                     Show this help`)
}

// loadClientConfig reads the client section of a config file in the current
// directory.
func loadClientConfig() (config.ClientConfig, bool) {
	loader := config.NewLoader()
	path, err := loader.FindConfig("")
	if err != nil {
		return config.ClientConfig{}, false
	}
	cfg, err := loader.LoadWithDefaults(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", path, err)
		return config.ClientConfig{}, false
	}
	return cfg.Client, true
}

// describeError turns transport errors into messages that tell an
// unreachable server apart from one that answered with an error.
func describeError(err error) string {
	var apiErr *client.APIError
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrConnectionFailed):
		return fmt.Sprintf("cannot reach vibetable at %s (is the server running?): %v", apiURL, err)
	case errors.Is(err, client.ErrTimeout):
		return fmt.Sprintf("vibetable at %s did not answer in time: %v", apiURL, err)
	case errors.As(err, &apiErr):
		return fmt.Sprintf("server error %d %s: %s", apiErr.StatusCode, apiErr.Code, apiErr.Message)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("server returned %s: %s", statusErr.Status, statusErr.Body)
	}
	return err.Error()
}

// errNoDocument is returned when the server has no stored log.
var errNoDocument = errors.New("no log stored on the server yet")

// printJSON outputs any value as formatted JSON
func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

// readInput reads path, or stdin for "-".
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func cmdPut(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vibetable-ctl put <file|->")
	}

	content, err := readInput(args[0])
	if err != nil {
		return err
	}

	info, err := apiClient.Documents.Put(context.Background(), content)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(info)
		return nil
	}
	fmt.Printf("Stored %d bytes at %s\n", info.Size, info.StoredAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func cmdLatest(args []string) error {
	output := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" && i+1 < len(args) {
			output = args[i+1]
			i++
		}
	}

	doc, err := apiClient.Documents.Get(context.Background())
	if err != nil {
		return err
	}
	if doc == nil {
		return errNoDocument
	}

	if jsonOutput {
		printJSON(doc)
		return nil
	}
	if output != "" && output != "-" {
		if err := os.WriteFile(output, []byte(doc.Content), 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", doc.Size, output)
		return nil
	}
	fmt.Print(doc.Content)
	return nil
}

func cmdDataset(args []string) error {
	ds, err := apiClient.Dataset.Get(context.Background())
	if err != nil {
		return err
	}
	printDataset(ds)
	return nil
}

func cmdRelabel(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vibetable-ctl relabel <label|none>")
	}

	var label interface{} = args[0]
	if args[0] == "none" {
		label = nil
	} else if n, err := strconv.Atoi(args[0]); err == nil {
		label = n
	}

	ds, err := apiClient.Dataset.Relabel(context.Background(), label)
	if err != nil {
		return err
	}
	printDataset(ds)
	return nil
}

func cmdClear(args []string) error {
	cleared, err := apiClient.Dataset.Clear(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]bool{"cleared": cleared})
		return nil
	}
	if cleared {
		fmt.Println("Dataset cleared")
	} else {
		fmt.Println("No dataset to clear")
	}
	return nil
}

func printDataset(ds *client.Dataset) {
	if jsonOutput {
		printJSON(ds)
		return
	}

	label := "none"
	if ds.Label != nil {
		label = fmt.Sprintf("%d (%s)", *ds.Label, ds.LabelName)
	}
	fmt.Printf("ID:          %s\n", ds.ID)
	fmt.Printf("Source:      %s\n", ds.Source)
	fmt.Printf("Label:       %s\n", label)
	fmt.Printf("Rows:        %d wide, %d long\n", ds.Rows, ds.LongRows)
	if ds.Start != "" {
		fmt.Printf("Range:       %s - %s\n", ds.Start, ds.End)
	}
	fmt.Printf("Converted:   %s (%.1fms)\n", ds.ConvertedAt.Local().Format("2006-01-02 15:04:05"), ds.DurationMS)
	if len(ds.Diagnostics) > 0 {
		fmt.Printf("Skipped:     %d lines\n", len(ds.Diagnostics))
		for _, d := range ds.Diagnostics {
			fmt.Printf("  line %d: %s: %q\n", d.Line, d.Reason, d.Text)
		}
	}
}

func cmdExport(args []string) error {
	if len(args) < 1 || (args[0] != "wide" && args[0] != "long") {
		return fmt.Errorf("usage: vibetable-ctl export wide|long [-start T -end T | -from I -to J] [-prefix P] [-o file]")
	}
	kind := args[0]

	opts := &client.ExportOptions{}
	output := ""
	var from, to string
	for i := 1; i < len(args); i++ {
		if i+1 >= len(args) {
			return fmt.Errorf("missing value for %s", args[i])
		}
		switch args[i] {
		case "-start":
			opts.Start = args[i+1]
		case "-end":
			opts.End = args[i+1]
		case "-from":
			from = args[i+1]
		case "-to":
			to = args[i+1]
		case "-prefix":
			opts.Prefix = args[i+1]
		case "-o":
			output = args[i+1]
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
		i++
	}
	if from != "" || to != "" {
		var err error
		if opts.From, opts.To, err = parseIndexes(from, to); err != nil {
			return err
		}
		opts.HasIndex = true
	}

	ctx := context.Background()
	var export *client.Export
	var err error
	if kind == "wide" {
		export, err = apiClient.Dataset.Wide(ctx, opts)
	} else {
		export, err = apiClient.Dataset.Long(ctx, opts)
	}
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := os.Stdout.Write(export.Data)
		return err
	}
	if output == "" {
		output = filepath.Base(export.Filename)
	}
	if err := os.WriteFile(output, export.Data, 0644); err != nil {
		return err
	}
	if jsonOutput {
		printJSON(map[string]interface{}{"file": output, "rows": export.Rows})
		return nil
	}
	fmt.Printf("Wrote %d rows to %s\n", export.Rows, output)
	return nil
}

// parseIndexes parses -from/-to. An omitted -from is 0 and an omitted -to
// is -1, the last row.
func parseIndexes(from, to string) (int, int, error) {
	f, t := 0, -1
	var err error
	if from != "" {
		if f, err = strconv.Atoi(from); err != nil {
			return 0, 0, fmt.Errorf("invalid -from: %s", from)
		}
	}
	if to != "" {
		if t, err = strconv.Atoi(to); err != nil {
			return 0, 0, fmt.Errorf("invalid -to: %s", to)
		}
	}
	return f, t, nil
}

func cmdLabels(args []string) error {
	labels, err := apiClient.Labels.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(labels)
		return nil
	}

	fmt.Printf("%-6s %-20s %s\n", "VALUE", "NAME", "DISPLAY")
	fmt.Println(strings.Repeat("-", 50))
	for _, l := range labels {
		fmt.Printf("%-6d %-20s %s\n", l.Value, l.Name, l.Display)
	}
	return nil
}

func cmdEvents(args []string) error {
	opts := &client.ListOptions{Limit: 50}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return fmt.Errorf("missing value for %s", args[i])
		}
		switch args[i] {
		case "-n":
			n, err := strconv.Atoi(args[i+1])
			if err == nil && n > 0 {
				opts.Limit = n
			}
		case "-type":
			opts.Types = append(opts.Types, args[i+1])
		case "-source":
			opts.Source = args[i+1]
		case "-since":
			t, err := parseSince(args[i+1], time.Now())
			if err != nil {
				return err
			}
			opts.Since = t
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
		i++
	}

	events, err := apiClient.Events.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(events)
		return nil
	}

	fmt.Printf("%-20s %-20s %-20s %s\n", "TIME", "TYPE", "SOURCE", "DETAILS")
	fmt.Println(strings.Repeat("-", 100))
	for _, evt := range events {
		details := ""
		if len(evt.Payload) > 0 {
			parts := []string{}
			for k, v := range evt.Payload {
				parts = append(parts, fmt.Sprintf("%s=%v", k, v))
			}
			sort.Strings(parts)
			details = strings.Join(parts, " ")
		}
		fmt.Printf("%-20s %-20s %-20s %s\n",
			evt.Timestamp.Local().Format("2006-01-02 15:04:05"),
			evt.Type,
			evt.Source,
			details,
		)
	}

	return nil
}
