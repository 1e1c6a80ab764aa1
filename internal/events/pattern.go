// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// PatternMatcher handles event pattern matching.
type PatternMatcher struct{}

// NewPatternMatcher creates a new pattern matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// Match checks if an event type matches a pattern.
// Patterns are dot-separated; a "*" segment matches exactly one segment,
// except that a lone "*" matches everything:
//   - "dataset.*" matches "dataset.converted", "dataset.failed"
//   - "*.failed" matches "dataset.failed", "inbox.failed"
func (pm *PatternMatcher) Match(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}
	return matchSegments(strings.Split(eventType, "."), splitPattern(pattern))
}

func splitPattern(pattern string) []string {
	if pattern == "*" {
		return nil
	}
	return strings.Split(pattern, ".")
}

// matchSegments compares type segments with pattern segments. A nil pattern
// matches any type.
func matchSegments(typ, pat []string) bool {
	if pat == nil {
		return true
	}
	if len(typ) != len(pat) {
		return false
	}
	for i, p := range pat {
		if p != "*" && p != typ[i] {
			return false
		}
	}
	return true
}

// Compile pre-compiles a pattern for efficient matching.
func (pm *PatternMatcher) Compile(pattern string) (CompiledPattern, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	for _, seg := range strings.Split(pattern, ".") {
		if seg == "" {
			return nil, errors.New("empty segment in pattern " + pattern)
		}
	}
	return &compiledPattern{
		pattern:  pattern,
		segments: splitPattern(pattern),
	}, nil
}

// CompiledPattern is a pre-compiled pattern for efficient matching.
type CompiledPattern interface {
	Match(eventType string) bool
	String() string
}

type compiledPattern struct {
	pattern  string
	segments []string
}

func (cp *compiledPattern) Match(eventType string) bool {
	if eventType == "" {
		return false
	}
	return matchSegments(strings.Split(eventType, "."), cp.segments)
}

func (cp *compiledPattern) String() string {
	return cp.pattern
}
