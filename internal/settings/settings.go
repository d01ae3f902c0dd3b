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

// Package settings defines the appearance and content of a QR code as edited
// in the studio, along with the immutable defaults and the color presets.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

// ErrInvalidSettings wraps every Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the complete description of one code.
type Settings struct {
	Text          string   `json:"text"`
	Size          int      `json:"size"`
	Foreground    string   `json:"foreground"`
	Background    string   `json:"background"`
	Level         qr.Level `json:"level"`
	IncludeMargin bool     `json:"includeMargin"`
}

// Builtin are the factory defaults.
var Builtin = Settings{
	Text:          "",
	Size:          512,
	Foreground:    "#000000",
	Background:    "#ffffff",
	Level:         qr.LevelM,
	IncludeMargin: true,
}

// Validate checks every field against the studio invariants.
func (s Settings) Validate() error {
	var errs []error
	if len([]rune(s.Text)) > validate.MaxTextLength {
		errs = append(errs, fmt.Errorf("text longer than %d characters", validate.MaxTextLength))
	}
	if s.Size < validate.MinSize || s.Size > validate.MaxSize {
		errs = append(errs, fmt.Errorf("size %d outside [%d, %d]", s.Size, validate.MinSize, validate.MaxSize))
	}
	if !validate.IsValidHexColor(s.Foreground) {
		errs = append(errs, fmt.Errorf("foreground %q is not a hex color", s.Foreground))
	}
	if !validate.IsValidHexColor(s.Background) {
		errs = append(errs, fmt.Errorf("background %q is not a hex color", s.Background))
	}
	if _, err := qr.ParseLevel(string(s.Level)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidSettings}, errs...)...)
	}
	return nil
}

// HasContent reports whether the text is non-blank.
func (s Settings) HasContent() bool {
	return strings.TrimSpace(s.Text) != ""
}

// Style resolves the colors for the renderers.
func (s Settings) Style() (render.Style, error) {
	fg, err := validate.ParseHexColor(s.Foreground)
	if err != nil {
		return render.Style{}, fmt.Errorf("foreground: %w", err)
	}
	bg, err := validate.ParseHexColor(s.Background)
	if err != nil {
		return render.Style{}, fmt.Errorf("background: %w", err)
	}
	return render.Style{Foreground: fg, Background: bg, IncludeMargin: s.IncludeMargin}, nil
}

// Defaults is an immutable set of starting settings.
type Defaults struct {
	s Settings
}

// NewDefaults validates s and freezes it.
func NewDefaults(s Settings) (Defaults, error) {
	s.Foreground = validate.NormalizeHexColor(s.Foreground)
	s.Background = validate.NormalizeHexColor(s.Background)
	if err := s.Validate(); err != nil {
		return Defaults{}, err
	}
	return Defaults{s: s}, nil
}

// BuiltinDefaults wraps Builtin.
func BuiltinDefaults() Defaults {
	return Defaults{s: Builtin}
}

// Settings returns a copy of the defaults.
func (d Defaults) Settings() Settings {
	return d.s
}

// Preset is a named foreground/background pair.
type Preset struct {
	Name       string `json:"name"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// Presets are the color pairs offered by the appearance panel.
var Presets = [8]Preset{
	{Name: "Classic", Foreground: "#000000", Background: "#ffffff"},
	{Name: "Inverted", Foreground: "#ffffff", Background: "#000000"},
	{Name: "Ocean", Foreground: "#1e3a8a", Background: "#dbeafe"},
	{Name: "Forest", Foreground: "#14532d", Background: "#dcfce7"},
	{Name: "Sunset", Foreground: "#9a3412", Background: "#ffedd5"},
	{Name: "Grape", Foreground: "#581c87", Background: "#f3e8ff"},
	{Name: "Rose", Foreground: "#9f1239", Background: "#ffe4e6"},
	{Name: "Slate", Foreground: "#0f172a", Background: "#e2e8f0"},
}
