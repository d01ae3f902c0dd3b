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

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
)

const (
	jpegQuality          = 100
	defaultRenderTimeout = 5 * time.Second
)

// Request describes one export.
type Request struct {
	Settings settings.Settings
	Format   Format
}

// Result is a finished download.
type Result struct {
	Data      []byte
	Filename  string
	MIMEType  string
	Format    Format
	CreatedAt time.Time
}

// Runner produces export results.
type Runner interface {
	Export(ctx context.Context, req Request) (*Result, error)
}

// SurfaceFunc allocates the main export canvas.
type SurfaceFunc func(size int) (*image.RGBA, error)

// Pipeline renders and encodes exports. It holds no per-export state and is
// safe for concurrent use.
type Pipeline struct {
	encoder       qr.Encoder
	stage         *render.Stage
	logger        *zap.Logger
	now           func() time.Time
	surface       SurfaceFunc
	renderTimeout time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for filenames.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRenderTimeout bounds the wait for the render target.
func WithRenderTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.renderTimeout = d
		}
	}
}

// WithSurface overrides the canvas allocator.
func WithSurface(fn SurfaceFunc) Option {
	return func(p *Pipeline) { p.surface = fn }
}

// NewPipeline creates a Pipeline drawing raster exports through stage.
func NewPipeline(encoder qr.Encoder, stage *render.Stage, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		encoder:       encoder,
		stage:         stage,
		logger:        logger,
		now:           time.Now,
		surface:       render.NewSurface,
		renderTimeout: defaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export renders req. Any failure is joined with ErrExportFailed and no
// partial result is returned.
func (p *Pipeline) Export(ctx context.Context, req Request) (*Result, error) {
	logger := p.logger.With(
		zap.String("format", string(req.Format)),
		zap.Int("size", req.Settings.Size),
		zap.String("level", string(req.Settings.Level)),
	)
	start := time.Now()

	data, err := p.export(ctx, req)
	if err != nil {
		logger.Error("Export failed", zap.Error(err))
		return nil, errors.Join(ErrExportFailed, err)
	}

	now := p.now()
	res := &Result{
		Data:      data,
		Filename:  Filename(req.Format, now),
		MIMEType:  req.Format.MIMEType(),
		Format:    req.Format,
		CreatedAt: now,
	}
	logger.Info("Export completed",
		zap.String("filename", res.Filename),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (p *Pipeline) export(ctx context.Context, req Request) ([]byte, error) {
	switch req.Format {
	case FormatPNG, FormatJPEG, FormatSVG:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}

	style, err := req.Settings.Style()
	if err != nil {
		return nil, err
	}

	// vector output draws its margin as an inset instead of a quiet zone
	quietZone := req.Settings.IncludeMargin && req.Format.Raster()
	grid, err := p.encoder.Encode(req.Settings.Text, req.Settings.Level, quietZone)
	if err != nil {
		return nil, err
	}
	if grid.Empty() {
		return nil, render.ErrEmptyGrid
	}

	var data []byte
	if req.Format.Raster() {
		data, err = p.raster(ctx, grid, style, req)
	} else {
		data, err = render.SVG(grid, style, req.Settings.Size)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyBlob
	}
	return data, nil
}

func (p *Pipeline) raster(ctx context.Context, grid qr.Grid, style render.Style, req Request) ([]byte, error) {
	size := render.CanvasSize(req.Settings.Size)
	canvas, err := p.surface(size)
	if err != nil {
		return nil, err
	}
	if canvas == nil {
		return nil, render.ErrNoSurface
	}
	render.Fill(canvas, style.Background)

	rect := render.CodeRect(size)
	target := p.stage.Mount(grid, style, rect.Dx())
	defer target.Detach()

	// an export is not cancellable once started; only the render timeout applies
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.renderTimeout)
	defer cancel()

	code, err := target.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Join(ErrRenderTimeout, err)
		}
		return nil, err
	}
	draw.Draw(canvas, rect, code, code.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	switch req.Format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, canvas)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Format, err)
	}
	return buf.Bytes(), nil
}
