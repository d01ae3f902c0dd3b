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

// Package validate holds the pure input checks used by the studio: size
// clamping, hex color validation and text length limits.
package validate

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MinSize is the smallest export canvas edge in pixels.
	MinSize = 128
	// MaxSize is the largest export canvas edge in pixels.
	MaxSize = 3000
	// SizeStep is the slider granularity offered by the UI.
	SizeStep = 8
	// MaxTextLength is the maximum number of characters accepted for content.
	MaxTextLength = 1000
)

// ErrInvalidHexColor is returned by ParseHexColor for anything IsValidHexColor rejects.
var ErrInvalidHexColor = errors.New("invalid hex color")

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Limits bounds an accepted size.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits are the [MinSize, MaxSize] bounds.
var DefaultLimits = Limits{Min: MinSize, Max: MaxSize}

// Clamp forces n into [l.Min, l.Max].
func (l Limits) Clamp(n int) int {
	if n < l.Min {
		return l.Min
	}
	if n > l.Max {
		return l.Max
	}
	return n
}

// ClampSize parses raw as a base-10 integer and clamps it to the limits.
// The boolean is false when raw is not an integer; callers keep their
// previous value in that case.
func (l Limits) ClampSize(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return l.Clamp(n), true
}

// ClampSize clamps raw to DefaultLimits.
func ClampSize(raw string) (int, bool) {
	return DefaultLimits.ClampSize(raw)
}

// IsValidHexColor reports whether s is '#' followed by exactly 3 or 6 hex digits.
func IsValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// NormalizeHexColor lower-cases a valid color. Invalid input is returned as is.
func NormalizeHexColor(s string) string {
	if !IsValidHexColor(s) {
		return s
	}
	return strings.ToLower(s)
}

// ParseHexColor converts "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	if !IsValidHexColor(s) {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHexColor, s)
	}
	digits := s[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Join(ErrInvalidHexColor, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// TruncateText cuts s to at most max characters, respecting UTF-8 boundaries.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
