// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package vibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	labels := Labels()
	require.Len(t, labels, 6)
	for i, l := range labels {
		assert.Equal(t, Label(i), l)
		assert.True(t, l.Valid())
	}
	assert.Equal(t, "Normal_Mode(0)", LabelNormal.String())
	assert.Equal(t, "Seal Failure(1)", LabelSealFailure.String())
	assert.Equal(t, "Cavitation(5)", LabelCavitation.String())
	assert.Equal(t, "shaft_misalignment", LabelShaftMisalignment.Name())
	assert.False(t, Label(6).Valid())
	assert.Equal(t, "Label(6)", Label(6).String())
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"Bearing(2)", LabelBearing},
		{"bearing", LabelBearing},
		{"  UNBALANCE_IMPELLER ", LabelUnbalanceImpeller},
		{"Seal Failure(1)", LabelSealFailure},
		{"5", LabelCavitation},
		{"0", LabelNormal},
	}
	for _, tt := range tests {
		got, err := ParseLabel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"", "6", "-1", "broken", "2.5"} {
		_, err := ParseLabel(in)
		assert.ErrorIs(t, err, ErrUnknownLabel, in)
	}
}

func TestParseLabelValue(t *testing.T) {
	l, err := ParseLabelValue(nil)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = ParseLabelValue("")
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = ParseLabelValue(float64(3))
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, LabelShaftMisalignment, *l)

	l, err = ParseLabelValue(4)
	require.NoError(t, err)
	assert.Equal(t, LabelUnbalanceImpeller, *l)

	l, err = ParseLabelValue("cavitation")
	require.NoError(t, err)
	assert.Equal(t, LabelCavitation, *l)

	_, err = ParseLabelValue(2.5)
	assert.ErrorIs(t, err, ErrUnknownLabel)
	_, err = ParseLabelValue(float64(9))
	assert.ErrorIs(t, err, ErrUnknownLabel)
	_, err = ParseLabelValue(true)
	assert.ErrorIs(t, err, ErrUnknownLabel)
}
