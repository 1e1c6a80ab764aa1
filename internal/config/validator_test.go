// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate_Defaults(t *testing.T) {
	validator := NewValidator()
	assert.NoError(t, validator.Validate(Default()))
}

func TestValidator_Validate_Fields(t *testing.T) {
	retries := -1

	tests := []struct {
		name   string
		modify func(cfg *Config)
		field  string
	}{
		{
			name:   "port out of range",
			modify: func(cfg *Config) { cfg.Server.Port = 70000 },
			field:  "server.port",
		},
		{
			name:   "unknown label name",
			modify: func(cfg *Config) { cfg.Convert.Label = "rust" },
			field:  "convert.label",
		},
		{
			name:   "label out of range",
			modify: func(cfg *Config) { cfg.Convert.Label = float64(9) },
			field:  "convert.label",
		},
		{
			name:   "prefix with path",
			modify: func(cfg *Config) { cfg.Convert.FilePrefix = "../escape" },
			field:  "convert.file_prefix",
		},
		{
			name:   "prefix template error",
			modify: func(cfg *Config) { cfg.Convert.FilePrefix = "pump_{{.Missing}}" },
			field:  "convert.file_prefix",
		},
		{
			name:   "bad inbox pattern",
			modify: func(cfg *Config) { cfg.Inbox.Pattern = "[" },
			field:  "inbox.pattern",
		},
		{
			name:   "auto convert without inbox",
			modify: func(cfg *Config) { cfg.Inbox.AutoConvert = true },
			field:  "inbox.auto_convert",
		},
		{
			name:   "bad debounce",
			modify: func(cfg *Config) { cfg.Inbox.Debounce = "soon" },
			field:  "inbox.debounce",
		},
		{
			name:   "negative history age",
			modify: func(cfg *Config) { cfg.Events.History.MaxAge = "-1h" },
			field:  "events.history.max_age",
		},
		{
			name:   "negative max events",
			modify: func(cfg *Config) { cfg.Events.History.MaxEvents = -5 },
			field:  "events.history.max_events",
		},
		{
			name:   "api url without scheme",
			modify: func(cfg *Config) { cfg.Client.APIURL = "localhost:8000" },
			field:  "client.api_url",
		},
		{
			name:   "negative retries",
			modify: func(cfg *Config) { cfg.Client.Retries = &retries },
			field:  "client.retries",
		},
		{
			name:   "bad timeout",
			modify: func(cfg *Config) { cfg.Client.Timeout = "15" },
			field:  "client.timeout",
		},
	}

	validator := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := validator.Validate(cfg)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Errors, 1, err.Error())
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}
}

func TestValidator_Validate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	cfg.Convert.Label = "rust"
	cfg.Inbox.Debounce = "soon"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port: must be between 0 and 65535")
	assert.Contains(t, err.Error(), "convert.label")
	assert.Contains(t, err.Error(), "inbox.debounce: invalid duration 'soon'")
}

func TestValidator_Validate_LabelForms(t *testing.T) {
	validator := NewValidator()
	for _, v := range []interface{}{nil, "", "bearing", "Bearing", "2", float64(5)} {
		cfg := Default()
		cfg.Convert.Label = v
		assert.NoError(t, validator.Validate(cfg), "label %#v", v)
	}
}
