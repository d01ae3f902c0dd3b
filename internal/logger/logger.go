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

// Package logger provides centralized logging configuration for the QR studio.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until InitLogger runs.
var Logger = zap.NewNop()

var (
	initOnce sync.Once
	levelMap = map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
)

// InitLogger builds Logger from LOG_ENV (dev/prod) and LOG_LEVEL (debug/info/warn/error).
func InitLogger() *zap.Logger {
	initOnce.Do(func() {
		logEnv := os.Getenv("LOG_ENV")
		l, err := New(logEnv, os.Getenv("LOG_LEVEL"))
		if err != nil {
			// keep the process alive with a bare production logger
			l = zap.Must(zap.NewProduction())
			l.Error("Falling back to default logger", zap.Error(err))
		}
		Logger = l
		Logger.Info("Logger initialized",
			zap.String("LOG_ENV", logEnv),
			zap.String("LOG_LEVEL", l.Level().String()),
		)
	})
	return Logger
}

// New returns a JSON logger for env "prod" and a console logger otherwise.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	return cfg.Build()
}

// ParseLevel maps debug/info/warn/error to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	if level, ok := levelMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}
