// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import "errors"

var (
	// ErrMalformedTimestamp is returned for a line that looks like a
	// timestamp but does not canonicalize.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMalformedValue is returned in strict mode when a recognized value
	// line carries a number that cannot be parsed.
	ErrMalformedValue = errors.New("malformed value")

	// ErrUnknownLabel is returned when a label name or number is not part
	// of the label enumeration.
	ErrUnknownLabel = errors.New("unknown label")
)
