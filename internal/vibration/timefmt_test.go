// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7/4/2024 2:05:09 PM", "04/07/2024 14:05:09"},
		{"1/1/2024 12:00:00 AM", "01/01/2024 00:00:00"},
		{"1/1/2024 12:00:00 PM", "01/01/2024 12:00:00"},
		{"12/31/2023 11:59:59 PM", "31/12/2023 23:59:59"},
		{"  3/9/2025   1:02:03   AM  ", "09/03/2025 01:02:03"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAllHours(t *testing.T) {
	for h := 1; h <= 12; h++ {
		for _, ampm := range []string{"AM", "PM"} {
			in := "5/6/2024 " + strconv.Itoa(h) + ":30:00 " + ampm
			got, err := ParseSource(in)
			require.NoError(t, err, in)

			want := h % 12
			if ampm == "PM" {
				want += 12
			}
			assert.Equal(t, want, got.Hour(), in)
		}
	}
}

func TestNormalizeMalformed(t *testing.T) {
	bad := []string{
		"",
		"2024-07-04 14:05:09",
		"7/4/2024 14:05:09",
		"7/4/2024 0:05:09 AM",
		"7/4/2024 13:05:09 PM",
		"13/4/2024 2:05:09 PM",
		"2/30/2024 2:05:09 PM",
		"7/4/24 2:05:09 PM",
		"7/4/2024 2:05:09 PM extra",
		"3/9/2025 1:02:03 am",
	}
	for _, in := range bad {
		_, err := Normalize(in)
		assert.True(t, errors.Is(err, ErrMalformedTimestamp), "input %q: %v", in, err)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	inputs := []string{
		"7/4/2024 2:05:09 PM",
		"1/1/2024 12:00:00 AM",
		"10/15/2023 12:45:01 PM",
		"2/29/2024 11:11:11 AM",
	}
	for _, in := range inputs {
		src, err := ParseSource(in)
		require.NoError(t, err)

		canon, err := Normalize(in)
		require.NoError(t, err)

		back, err := ParseCanonical(canon)
		require.NoError(t, err)
		assert.True(t, src.Equal(back), "%s -> %s", in, canon)
	}
}

func TestParseBound(t *testing.T) {
	a, err := ParseBound("04/07/2024 14:05:09")
	require.NoError(t, err)
	b, err := ParseBound("7/4/2024 2:05:09 PM")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = ParseBound("yesterday")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = ParseCanonical("4/7/2024 14:05:09")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}
