// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wingedpig/vibetable/internal/app"
	"github.com/wingedpig/vibetable/internal/config"
)

var (
	version = "0.3"
)

func main() {
	// Check for subcommands before flag parsing
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Parse flags
	var (
		configPath  string
		host        string
		port        int
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: vibetable.hjson or vibetable.json if present)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("vibetable %s\n", version)
		os.Exit(0)
	}

	// Create and run app
	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("App error: %v", err)
	}
}

// runInit handles the "vibetable init" command
func runInit(args []string) error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	showHelp := initFlags.Bool("help", false, "Show help for init command")
	initFlags.BoolVar(showHelp, "h", false, "Show help for init command")
	initFlags.Parse(args)

	if *showHelp {
		fmt.Println(`Usage: vibetable init [file]

Write a commented configuration file showing every default.
The file defaults to vibetable.hjson in the current directory and is
never overwritten.

Options:
  -h, -help    Show this help message

After running init:
  1. Edit vibetable.hjson (set convert.label, inbox.dir, ...)
  2. Run: vibetable
  3. Upload: curl -X PUT -d '{"content": "..."}' http://127.0.0.1:8000/api/v1/documents/latest`)
		return nil
	}

	path := "vibetable.hjson"
	if initFlags.NArg() > 0 {
		path = initFlags.Arg(0)
	}

	if err := config.WriteSample(path); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
