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

// Package qr adapts github.com/skip2/go-qrcode into the module grid consumed
// by the renderers.
package qr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

var (
	// ErrEmptyContent is returned when the content is empty or whitespace only.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrEncodeFailed is returned when the upstream library rejects the content.
	ErrEncodeFailed = errors.New("failed to encode QR code")
	// ErrInvalidLevel is returned by ParseLevel for unknown levels.
	ErrInvalidLevel = errors.New("invalid error correction level")
)

// Level is the QR error-correction level.
type Level string

const (
	LevelL Level = "L" // ~7% recovery
	LevelM Level = "M" // ~15% recovery
	LevelQ Level = "Q" // ~25% recovery
	LevelH Level = "H" // ~30% recovery
)

// Levels lists the accepted levels in ascending redundancy.
var Levels = []Level{LevelL, LevelM, LevelQ, LevelH}

// ParseLevel accepts L, M, Q or H in any case.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelL, LevelM, LevelQ, LevelH:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Grid is a square matrix of modules, true meaning dark.
type Grid struct {
	cells [][]bool
}

// NewGrid wraps cells. Rows must all have len(cells) entries.
func NewGrid(cells [][]bool) Grid {
	return Grid{cells: cells}
}

// Size is the number of modules per edge.
func (g Grid) Size() int { return len(g.cells) }

// Empty reports whether the grid has no modules.
func (g Grid) Empty() bool { return len(g.cells) == 0 }

// Dark reports whether the module at column x, row y is set.
func (g Grid) Dark(x, y int) bool {
	if y < 0 || y >= len(g.cells) || x < 0 || x >= len(g.cells[y]) {
		return false
	}
	return g.cells[y][x]
}

// Encoder turns text into a module grid.
type Encoder interface {
	Encode(text string, level Level, quietZone bool) (Grid, error)
}

type encoder struct {
	logger *zap.Logger
}

// NewEncoder creates the skip2-backed Encoder.
func NewEncoder(logger *zap.Logger) Encoder {
	return &encoder{logger: logger}
}

// Encode builds the grid. With quietZone set the grid carries the standard
// four-module border.
func (e *encoder) Encode(text string, level Level, quietZone bool) (Grid, error) {
	if strings.TrimSpace(text) == "" {
		return Grid{}, ErrEmptyContent
	}

	e.logger.Debug("Encoding QR code",
		zap.String("content", truncateString(text, 32)),
		zap.Int("data_length", len(text)),
		zap.String("level", string(level)),
		zap.Bool("quiet_zone", quietZone),
	)

	q, err := qrcode.New(text, level.recovery())
	if err != nil {
		e.logger.Warn("Failed to encode QR code",
			zap.Error(err),
			zap.Int("data_length", len(text)),
		)
		return Grid{}, errors.Join(ErrEncodeFailed, err)
	}
	q.DisableBorder = !quietZone

	grid := NewGrid(q.Bitmap())
	e.logger.Debug("QR code encoded",
		zap.Int("version", q.VersionNumber),
		zap.Int("modules", grid.Size()),
	)
	return grid, nil
}

// truncateString truncates a string to maxLen for safe logging with proper UTF-8 handling.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
