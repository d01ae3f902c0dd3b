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

// Package render draws module grids onto raster canvases and vector documents.
//
// Raster export canvases are min(size, MaxSize) pixels square. The code sits
// centered and occupies the smaller of 90% of the canvas and the canvas minus
// a 40 pixel margin. Previews are a fifth of the requested size, capped at
// 400 pixels, and the grid fills the whole preview.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

const (
	codeRatio      = 0.9
	canvasMargin   = 40
	vectorInset    = 20
	previewRatio   = 0.2
	MaxPreviewSize = 400
)

var (
	// ErrEmptyGrid is returned when there is nothing to draw.
	ErrEmptyGrid = errors.New("module grid is empty")
	// ErrNoSurface is returned when a surface of the requested size cannot be allocated.
	ErrNoSurface = errors.New("drawing surface unavailable")
)

// Style carries the appearance of a rendered code.
type Style struct {
	Foreground    color.RGBA
	Background    color.RGBA
	IncludeMargin bool
}

// CanvasSize is the export canvas edge for a requested size.
func CanvasSize(size int) int {
	return min(size, validate.MaxSize)
}

// CodeSize is the edge of the code area inside a canvas.
func CodeSize(canvas int) int {
	scaled := int(float64(canvas) * codeRatio)
	if canvas <= canvasMargin {
		return scaled
	}
	return min(scaled, canvas-canvasMargin)
}

// CodeRect is the centered code area inside a canvas.
func CodeRect(canvas int) image.Rectangle {
	code := CodeSize(canvas)
	off := (canvas - code) / 2
	return image.Rect(off, off, off+code, off+code)
}

// PreviewSize is the on-screen preview edge for a requested size.
func PreviewSize(size int) int {
	return max(min(int(float64(size)*previewRatio), MaxPreviewSize), 1)
}

// NewSurface allocates a square RGBA surface.
func NewSurface(size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrNoSurface, size)
	}
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

// Fill paints the whole of dst with c.
func Fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// DrawGrid paints the dark modules of g with fg, scaled to fill r. Light
// modules leave dst untouched.
func DrawGrid(dst draw.Image, r image.Rectangle, g qr.Grid, fg color.Color) error {
	if g.Empty() {
		return ErrEmptyGrid
	}
	n := g.Size()
	modules := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if g.Dark(x, y) {
				modules.Set(x, y, fg)
			}
		}
	}
	draw.NearestNeighbor.Scale(dst, r, modules, modules.Bounds(), draw.Over, nil)
	return nil
}

// Code renders g over the background on a size x size surface.
func Code(g qr.Grid, style Style, size int) (*image.RGBA, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}
	img, err := NewSurface(size)
	if err != nil {
		return nil, err
	}
	Fill(img, style.Background)
	if err := DrawGrid(img, img.Bounds(), g, style.Foreground); err != nil {
		return nil, err
	}
	return img, nil
}

// Preview renders the on-screen preview for a requested size.
func Preview(g qr.Grid, style Style, size int) (*image.RGBA, error) {
	return Code(g, style, PreviewSize(size))
}
