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

// Package studio is the interaction controller behind the QR studio page. A
// Controller owns the settings of one browser session and drives the
// validator, renderers and exporter on its behalf.
package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/export"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/i18n"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

var (
	// ErrEmptyText is returned by Download, Copy and Preview while the text is blank.
	ErrEmptyText = errors.New("text is empty")
	// ErrCopyPending is returned by Copy while the previous confirmation is shown.
	ErrCopyPending = errors.New("copy confirmation still displayed")
	// ErrUnknownPreset is returned by ApplyPreset for an out-of-range index.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Panel is the visible configuration panel.
type Panel string

const (
	PanelConfig     Panel = "config"
	PanelAppearance Panel = "appearance"
)

// Trigger hands a finished export to the user, typically as a download.
type Trigger interface {
	Trigger(ctx context.Context, res *export.Result) error
}

// Clipboard writes text to the user's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// State is a snapshot of a controller.
type State struct {
	Settings    settings.Settings `json:"settings"`
	Format      export.Format     `json:"format"`
	Panel       Panel             `json:"panel"`
	Copied      bool              `json:"copied"`
	Generating  bool              `json:"generating"`
	CanDownload bool              `json:"canDownload"`
	Error       string            `json:"error"`
}

// Patch carries user edits. Nil fields are left alone; rejected values are
// dropped without an error.
type Patch struct {
	Text          *string
	Size          *string
	Foreground    *string
	Background    *string
	Level         *string
	IncludeMargin *bool
	Format        *string
	Panel         *string
}

// Change reports which parts of the state an Apply modified.
type Change struct {
	Settings bool
	Format   bool
	Panel    bool
}

// Any reports whether anything changed.
func (c Change) Any() bool { return c.Settings || c.Format || c.Panel }

// Options configure a Controller.
type Options struct {
	Defaults      settings.Defaults
	Limits        validate.Limits
	MaxTextLength int
	CopyFeedback  time.Duration
	Language      language.Tag
	Clock         func() time.Time
}

// Controller holds the editable state of one studio session.
type Controller struct {
	encoder  qr.Encoder
	exporter *export.Exporter
	logger   *zap.Logger
	opts     Options

	mu          sync.Mutex
	settings    settings.Settings
	format      export.Format
	panel       Panel
	copiedUntil time.Time
	copying     bool
	lastErr     string
	lastErrKey  string
}

// NewController creates a controller starting from opts.Defaults.
func NewController(encoder qr.Encoder, runner export.Runner, logger *zap.Logger, opts Options) *Controller {
	if opts.Limits == (validate.Limits{}) {
		opts.Limits = validate.DefaultLimits
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = validate.MaxTextLength
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Language == (language.Tag{}) {
		opts.Language = language.English
	}
	if opts.Defaults == (settings.Defaults{}) {
		opts.Defaults = settings.BuiltinDefaults()
	}

	return &Controller{
		encoder:  encoder,
		exporter: export.NewExporter(runner, logger),
		logger:   logger,
		opts:     opts,
		settings: opts.Defaults.Settings(),
		format:   export.FormatPNG,
		panel:    PanelConfig,
	}
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Settings:    c.settings,
		Format:      c.format,
		Panel:       c.panel,
		Copied:      c.opts.Clock().Before(c.copiedUntil),
		Generating:  c.exporter.Generating(),
		CanDownload: c.settings.HasContent() && !c.exporter.Generating(),
		Error:       c.lastErr,
	}
}

// Language is the language user-facing messages are rendered in.
func (c *Controller) Language() language.Tag {
	return c.opts.Language
}

// Apply is the single entry point for edits. It never starts an export.
func (c *Controller) Apply(p Patch) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ch Change
	next := c.settings

	if p.Text != nil {
		next.Text = validate.TruncateText(*p.Text, c.opts.MaxTextLength)
	}
	if p.Size != nil {
		if n, ok := c.opts.Limits.ClampSize(*p.Size); ok {
			next.Size = n
		}
	}
	if p.Foreground != nil && validate.IsValidHexColor(*p.Foreground) {
		next.Foreground = validate.NormalizeHexColor(*p.Foreground)
	}
	if p.Background != nil && validate.IsValidHexColor(*p.Background) {
		next.Background = validate.NormalizeHexColor(*p.Background)
	}
	if p.Level != nil {
		if l, err := qr.ParseLevel(*p.Level); err == nil {
			next.Level = l
		}
	}
	if p.IncludeMargin != nil {
		next.IncludeMargin = *p.IncludeMargin
	}
	if next != c.settings {
		c.settings = next
		ch.Settings = true
	}

	if p.Format != nil {
		if f, err := export.ParseFormat(*p.Format); err == nil && f != c.format {
			c.format = f
			ch.Format = true
		}
	}
	if p.Panel != nil {
		if panel := Panel(*p.Panel); (panel == PanelConfig || panel == PanelAppearance) && panel != c.panel {
			c.panel = panel
			ch.Panel = true
		}
	}
	return ch
}

// ApplyPreset switches both colors to preset i.
func (c *Controller) ApplyPreset(i int) error {
	if i < 0 || i >= len(settings.Presets) {
		return fmt.Errorf("%w: %d", ErrUnknownPreset, i)
	}
	preset := settings.Presets[i]
	c.Apply(Patch{Foreground: &preset.Foreground, Background: &preset.Background})
	return nil
}

// Reset restores the defaults and the default format and clears the error.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = c.opts.Defaults.Settings()
	c.format = export.FormatPNG
	c.lastErr, c.lastErrKey = "", ""
}

// DismissError clears the last error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr, c.lastErrKey = "", ""
}

// clearError clears the last error only if it was raised for key.
func (c *Controller) clearError(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErrKey == key {
		c.lastErr, c.lastErrKey = "", ""
	}
}

// CanDownload reports whether a download may start.
func (c *Controller) CanDownload() bool {
	return c.State().CanDownload
}

// Preview renders the on-screen preview as PNG. The module grid is encoded
// afresh on every call.
func (c *Controller) Preview() ([]byte, error) {
	s := c.State().Settings
	if !s.HasContent() {
		return nil, ErrEmptyText
	}
	style, err := s.Style()
	if err != nil {
		return nil, err
	}
	grid, err := c.encoder.Encode(s.Text, s.Level, s.IncludeMargin)
	if err != nil {
		c.logger.Warn("Preview encoding failed", zap.Error(err))
		return nil, err
	}
	img, err := render.Preview(grid, style, s.Size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// Download exports the current settings in the selected format and hands the
// result to trigger. Blank text is refused before any export starts; a
// download requested while one is running returns export.ErrInProgress and
// changes nothing.
func (c *Controller) Download(ctx context.Context, trigger Trigger) error {
	c.mu.Lock()
	req := export.Request{Settings: c.settings, Format: c.format}
	c.mu.Unlock()

	if !req.Settings.HasContent() {
		return ErrEmptyText
	}

	res, err := c.exporter.Export(ctx, req)
	if errors.Is(err, export.ErrInProgress) {
		return err
	}
	if err == nil {
		err = trigger.Trigger(ctx, res)
	}
	if err != nil {
		c.logger.Error("Download failed", zap.Error(err), zap.String("format", string(req.Format)))
		c.setError(i18n.KeyExportFailed)
		return err
	}

	c.clearError(i18n.KeyExportFailed)
	c.logger.Info("Download triggered", zap.String("filename", res.Filename))
	return nil
}

// Copy writes the text to clip. It is ignored while another copy is in
// flight or the previous copy confirmation is still displayed.
func (c *Controller) Copy(ctx context.Context, clip Clipboard) error {
	c.mu.Lock()
	if c.copying || c.opts.Clock().Before(c.copiedUntil) {
		c.mu.Unlock()
		return ErrCopyPending
	}
	text := c.settings.Text
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyText
	}
	c.copying = true
	c.mu.Unlock()

	err := clip.WriteText(ctx, text)

	c.mu.Lock()
	c.copying = false
	if err == nil {
		c.copiedUntil = c.opts.Clock().Add(c.opts.CopyFeedback)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("Copy to clipboard failed", zap.Error(err))
		c.setError(i18n.KeyCopyFailed)
		return err
	}
	return nil
}

func (c *Controller) setError(key string) {
	msg := i18n.Message(c.opts.Language, key)
	c.mu.Lock()
	c.lastErr, c.lastErrKey = msg, key
	c.mu.Unlock()
}
