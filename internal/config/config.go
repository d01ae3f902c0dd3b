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

// Package config provides configuration management for the QR studio.
// It loads configuration from environment variables with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

var (
	// ErrParsingConfig wraps environment parsing failures.
	ErrParsingConfig = errors.New("failed to parse configuration")
	// ErrInvalidConfig wraps Validate failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	MaxBodySize     int64         `env:"MAX_BODY_SIZE" envDefault:"524288"`

	MinSize       int `env:"MIN_SIZE" envDefault:"128"`
	MaxSize       int `env:"MAX_SIZE" envDefault:"3000"`
	MaxTextLength int `env:"MAX_TEXT_LENGTH" envDefault:"1000"`

	RenderTimeout      time.Duration `env:"RENDER_TIMEOUT" envDefault:"5s"`
	DownloadTTL        time.Duration `env:"DOWNLOAD_TTL" envDefault:"1m"`
	CopyFeedback       time.Duration `env:"COPY_FEEDBACK" envDefault:"2s"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	SourceURL string `env:"SOURCE_URL" envDefault:"https://github.com/wso2-open-operations/common-tools"`

	Defaults Defaults `envPrefix:"DEFAULT_"`
}

// Defaults are the settings a new session starts from.
type Defaults struct {
	Size          int    `env:"SIZE" envDefault:"512"`
	Foreground    string `env:"FOREGROUND" envDefault:"#000000"`
	Background    string `env:"BACKGROUND" envDefault:"#ffffff"`
	Level         string `env:"LEVEL" envDefault:"M"`
	IncludeMargin bool   `env:"INCLUDE_MARGIN" envDefault:"true"`
}

// LoadConfig reads configuration from environment variables and validates it.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	return load(logger, env.Options{})
}

func load(logger *zap.Logger, opts env.Options) (*Config, error) {
	logger.Info("Loading configuration from environment variables")

	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded successfully",
		zap.String("port", cfg.Port),
		zap.Int("min_size", cfg.MinSize),
		zap.Int("max_size", cfg.MaxSize),
		zap.Int("max_text_length", cfg.MaxTextLength),
		zap.Duration("render_timeout", cfg.RenderTimeout),
		zap.Duration("session_idle_timeout", cfg.SessionIdleTimeout),
	)
	return &cfg, nil
}

// Validate checks ranges and the default settings.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be positive"))
	}
	if c.MinSize <= 0 || c.MinSize > c.MaxSize {
		errs = append(errs, fmt.Errorf("MIN_SIZE %d must be positive and not above MAX_SIZE %d", c.MinSize, c.MaxSize))
	}
	if c.MaxSize > validate.MaxSize {
		errs = append(errs, fmt.Errorf("MAX_SIZE %d exceeds %d", c.MaxSize, validate.MaxSize))
	}
	if c.MaxTextLength <= 0 || c.MaxTextLength > validate.MaxTextLength {
		errs = append(errs, fmt.Errorf("MAX_TEXT_LENGTH must be in [1, %d]", validate.MaxTextLength))
	}
	for name, d := range map[string]time.Duration{
		"RENDER_TIMEOUT":       c.RenderTimeout,
		"DOWNLOAD_TTL":         c.DownloadTTL,
		"COPY_FEEDBACK":        c.CopyFeedback,
		"SESSION_IDLE_TIMEOUT": c.SessionIdleTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if len(errs) == 0 {
		if _, err := c.DefaultSettings(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// Limits are the accepted size bounds.
func (c *Config) Limits() validate.Limits {
	return validate.Limits{Min: c.MinSize, Max: c.MaxSize}
}

// DefaultSettings builds the frozen session defaults. The default size is
// clamped to the configured limits.
func (c *Config) DefaultSettings() (settings.Defaults, error) {
	level, err := qr.ParseLevel(c.Defaults.Level)
	if err != nil {
		return settings.Defaults{}, fmt.Errorf("DEFAULT_LEVEL: %w", err)
	}
	return settings.NewDefaults(settings.Settings{
		Size:          c.Limits().Clamp(c.Defaults.Size),
		Foreground:    c.Defaults.Foreground,
		Background:    c.Defaults.Background,
		Level:         level,
		IncludeMargin: c.Defaults.IncludeMargin,
	})
}
