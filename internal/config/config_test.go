// Copyright (c) 2026 WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

func loadFrom(t *testing.T, environ map[string]string) (*Config, error) {
	t.Helper()
	return load(zap.NewNop(), env.Options{Environment: environ})
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadFrom(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, int64(524288), cfg.MaxBodySize)
	assert.Equal(t, validate.DefaultLimits, cfg.Limits())
	assert.Equal(t, 1000, cfg.MaxTextLength)
	assert.Equal(t, 2*time.Second, cfg.CopyFeedback)

	defaults, err := cfg.DefaultSettings()
	require.NoError(t, err)
	s := defaults.Settings()
	assert.Equal(t, 512, s.Size)
	assert.Equal(t, qr.LevelM, s.Level)
	assert.True(t, s.IncludeMargin)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := loadFrom(t, map[string]string{
		"PORT":                   "9090",
		"RENDER_TIMEOUT":         "250ms",
		"MIN_SIZE":               "256",
		"DEFAULT_SIZE":           "100",
		"DEFAULT_FOREGROUND":     "#ABC",
		"DEFAULT_LEVEL":          "h",
		"DEFAULT_INCLUDE_MARGIN": "false",
	})
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RenderTimeout)

	defaults, err := cfg.DefaultSettings()
	require.NoError(t, err)
	s := defaults.Settings()
	assert.Equal(t, 256, s.Size, "default size is clamped to the configured minimum")
	assert.Equal(t, "#abc", s.Foreground)
	assert.Equal(t, qr.LevelH, s.Level)
	assert.False(t, s.IncludeMargin)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		environ map[string]string
		want    error
	}{
		{"unparsable duration", map[string]string{"READ_TIMEOUT": "soon"}, ErrParsingConfig},
		{"unparsable int", map[string]string{"MAX_SIZE": "big"}, ErrParsingConfig},
		{"inverted limits", map[string]string{"MIN_SIZE": "2000", "MAX_SIZE": "1000"}, ErrInvalidConfig},
		{"max size too large", map[string]string{"MAX_SIZE": "4000"}, ErrInvalidConfig},
		{"zero ttl", map[string]string{"DOWNLOAD_TTL": "0s"}, ErrInvalidConfig},
		{"bad default color", map[string]string{"DEFAULT_BACKGROUND": "white"}, ErrInvalidConfig},
		{"bad default level", map[string]string{"DEFAULT_LEVEL": "Z"}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := loadFrom(t, tt.environ)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
