// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateConvert(cfg, errs)
	v.validateInbox(cfg, errs)
	v.validateEvents(cfg, errs)
	v.validateClient(cfg, errs)
	v.validateDurations(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
}

func (v *Validator) validateConvert(cfg *Config, errs *ValidationError) {
	if _, err := cfg.Convert.LabelValue(); err != nil {
		errs.Add("convert.label", err.Error())
	}
	if err := NewTemplateExpander().Check(cfg.Convert.FilePrefix); err != nil {
		errs.Add("convert.file_prefix", err.Error())
	}
}

func (v *Validator) validateInbox(cfg *Config, errs *ValidationError) {
	if cfg.Inbox.Pattern != "" {
		if _, err := filepath.Match(cfg.Inbox.Pattern, ""); err != nil {
			errs.Add("inbox.pattern", fmt.Sprintf("invalid glob '%s'", cfg.Inbox.Pattern))
		}
	}
	if cfg.Inbox.AutoConvert && cfg.Inbox.Dir == "" {
		errs.Add("inbox.auto_convert", "requires inbox.dir")
	}
}

func (v *Validator) validateEvents(cfg *Config, errs *ValidationError) {
	if cfg.Events.History.MaxEvents < 0 {
		errs.Add("events.history.max_events", "must not be negative")
	}
}

func (v *Validator) validateClient(cfg *Config, errs *ValidationError) {
	if cfg.Client.APIURL != "" {
		u, err := url.Parse(cfg.Client.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.Add("client.api_url", fmt.Sprintf("invalid URL '%s'", cfg.Client.APIURL))
		}
	}
	if cfg.Client.GetRetries() < 0 {
		errs.Add("client.retries", "must not be negative")
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	durations := []struct {
		field string
		value string
	}{
		{"inbox.debounce", cfg.Inbox.Debounce},
		{"events.history.max_age", cfg.Events.History.MaxAge},
		{"client.timeout", cfg.Client.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			errs.Add(d.field, fmt.Sprintf("invalid duration '%s'", d.value))
		} else if parsed < 0 {
			errs.Add(d.field, "must not be negative")
		}
	}
}
