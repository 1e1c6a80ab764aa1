// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeSince = regexp.MustCompile(`^(\d+)([smhdw])$`)

// parseSince parses a relative duration like "30m" or "2d" (before now), or
// an ISO timestamp such as 2026-10-19T10:30:00Z or 2026-10-19.
func parseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty -since")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	matches := relativeSince.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid -since %q (use e.g. 30m, 2h, 1d or an ISO timestamp)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := time.Second
	switch matches[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}
	return now.Add(-time.Duration(value) * unit), nil
}
