// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and validation.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wingedpig/vibetable/internal/vibration"
)

// Config is the root configuration structure for vibetable.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Ingest  IngestConfig  `json:"ingest"`
	Convert ConvertConfig `json:"convert"`
	Inbox   InboxConfig   `json:"inbox"`
	Events  EventsConfig  `json:"events"`
	Client  ClientConfig  `json:"client"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IngestConfig configures the document store.
type IngestConfig struct {
	MaxDocumentBytes int `json:"max_document_bytes"` // 0 for the default, negative for no limit
}

// ConvertConfig configures conversions and exports.
type ConvertConfig struct {
	// Label is a label value (0-5) or name ("bearing"). Empty means unlabeled.
	Label      interface{} `json:"label"`
	Strict     bool        `json:"strict"`
	FilePrefix string      `json:"file_prefix"` // may contain template actions, see PrefixContext
	OutputDir  string      `json:"output_dir"`
}

// LabelValue returns the configured label, or nil when none is set.
func (c ConvertConfig) LabelValue() (*vibration.Label, error) {
	return vibration.ParseLabelValue(c.Label)
}

// InboxConfig configures the watched inbox directory. The inbox is disabled
// when Dir is empty.
type InboxConfig struct {
	Dir         string `json:"dir"`
	Pattern     string `json:"pattern"`
	Debounce    string `json:"debounce"`
	AutoConvert bool   `json:"auto_convert"`
}

// Enabled reports whether the inbox watcher should run.
func (c InboxConfig) Enabled() bool {
	return c.Dir != ""
}

// EventsConfig configures the event system.
type EventsConfig struct {
	History EventHistoryConfig `json:"history"`
}

// EventHistoryConfig configures event history retention.
type EventHistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// ClientConfig configures vibetable-ctl and other API clients.
type ClientConfig struct {
	APIURL  string `json:"api_url"`
	Timeout string `json:"timeout"`
	Retries *int   `json:"retries"`
}

// GetRetries returns the retry count, defaulting to 2.
func (c ClientConfig) GetRetries() int {
	if c.Retries == nil {
		return 2
	}
	return *c.Retries
}

// ParseDuration parses a duration string, returning a default if empty.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// String renders the effective settings on one line for startup logging.
func (c *Config) String() string {
	label := "none"
	if l, err := c.Convert.LabelValue(); err == nil && l != nil {
		label = l.Name()
	}
	inbox := "disabled"
	if c.Inbox.Enabled() {
		inbox = fmt.Sprintf("%s (%s)", c.Inbox.Dir, c.Inbox.Pattern)
	}
	return fmt.Sprintf("addr=%s label=%s strict=%t inbox=%s", c.Server.Addr(), label, c.Convert.Strict, inbox)
}
