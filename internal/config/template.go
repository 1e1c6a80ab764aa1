// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// PrefixContext is the data available to a templated file prefix, e.g.
// "pump_{{.Label}}_{{date \"20060102\" .Time}}".
type PrefixContext struct {
	ID     string    // dataset ID
	Label  string    // short label name, empty when unlabeled
	Source string    // where the document came from
	Time   time.Time // conversion time
}

// TemplateExpander handles Go text/template variable expansion in config values.
type TemplateExpander struct {
	funcMap template.FuncMap
}

// NewTemplateExpander creates a new template expander with built-in functions.
func NewTemplateExpander() *TemplateExpander {
	return &TemplateExpander{
		funcMap: template.FuncMap{
			"slugify": Slugify,
			"replace": Replace,
			"upper":   strings.ToUpper,
			"lower":   strings.ToLower,
			"default": DefaultValue,
			"date":    Date,
		},
	}
}

// Expand expands template variables in a string value.
func (e *TemplateExpander) Expand(value string, ctx *PrefixContext) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("").Funcs(e.funcMap).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ExpandPrefix expands a file prefix and rejects results that would escape
// the output directory.
func (e *TemplateExpander) ExpandPrefix(value string, ctx *PrefixContext) (string, error) {
	prefix, err := e.Expand(value, ctx)
	if err != nil {
		return "", fmt.Errorf("expand file prefix: %w", err)
	}
	prefix = strings.TrimSpace(prefix)
	if strings.ContainsAny(prefix, `/\`) || prefix == "." || prefix == ".." {
		return "", fmt.Errorf("file prefix %q must not contain a path", prefix)
	}
	return prefix, nil
}

// Check expands value against a sample context to catch template errors
// before the value is used.
func (e *TemplateExpander) Check(value string) error {
	_, err := e.ExpandPrefix(value, &PrefixContext{
		ID:     "00000000-0000-0000-0000-000000000000",
		Label:  "normal",
		Source: "http",
		Time:   time.Date(2024, 7, 4, 14, 5, 9, 0, time.UTC),
	})
	return err
}

// Slugify converts a string to a filename-friendly slug.
func Slugify(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Replace common separators with hyphens
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ":", "-")

	// Remove any character that isn't alphanumeric or hyphen
	s = slugInvalid.ReplaceAllString(s, "")

	// Replace multiple hyphens with single hyphen
	s = slugHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Replace replaces all occurrences of old with new in s.
func Replace(old, new, s string) string {
	return strings.ReplaceAll(s, old, new)
}

// DefaultValue returns the value if non-empty, otherwise the default.
func DefaultValue(defaultVal, value string) string {
	if value == "" {
		return defaultVal
	}
	return value
}

// Date formats t with a Go time layout.
func Date(layout string, t time.Time) string {
	return t.Format(layout)
}
