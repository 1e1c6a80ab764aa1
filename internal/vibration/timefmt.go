// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// SourceLayout is the timestamp layout written by sensor devices,
	// e.g. "7/4/2024 2:05:09 PM".
	SourceLayout = "1/2/2006 3:04:05 PM"

	// CanonicalLayout is the fixed-width layout used in converted tables,
	// e.g. "04/07/2024 14:05:09".
	CanonicalLayout = "02/01/2006 15:04:05"
)

var (
	sourceTimeRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}) (\d{1,2}):(\d{2}):(\d{2}) (AM|PM)$`)
	canonicalTimeRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`)
)

// collapseSpace trims s and replaces inner whitespace runs with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseSource parses a device timestamp (M/D/YYYY h:mm:ss AM|PM).
func ParseSource(s string) (time.Time, error) {
	v := collapseSpace(s)
	m := sourceTimeRe.FindStringSubmatch(v)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	if h, _ := strconv.Atoi(m[4]); h < 1 || h > 12 {
		return time.Time{}, fmt.Errorf("%w: %q: hour out of range", ErrMalformedTimestamp, s)
	}
	t, err := time.Parse(SourceLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
	}
	return t, nil
}

// ParseCanonical parses a canonical timestamp (DD/MM/YYYY HH:MM:SS).
func ParseCanonical(s string) (time.Time, error) {
	v := collapseSpace(s)
	if !canonicalTimeRe.MatchString(v) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	t, err := time.Parse(CanonicalLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
	}
	return t, nil
}

// FormatCanonical renders t in the canonical layout.
func FormatCanonical(t time.Time) string {
	return t.Format(CanonicalLayout)
}

// Normalize converts a device timestamp to its canonical form.
func Normalize(s string) (string, error) {
	t, err := ParseSource(s)
	if err != nil {
		return "", err
	}
	return FormatCanonical(t), nil
}

// ParseBound parses a user-supplied window bound in either the canonical or
// the device layout.
func ParseBound(s string) (time.Time, error) {
	if t, err := ParseCanonical(s); err == nil {
		return t, nil
	}
	if t, err := ParseSource(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (want %q or %q)", ErrMalformedTimestamp, s, CanonicalLayout, SourceLayout)
}
