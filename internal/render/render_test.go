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

package render_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

// checker is a 2x2 grid with the top-left and bottom-right modules dark.
func checker() qr.Grid {
	return qr.NewGrid([][]bool{{true, false}, {false, true}})
}

func TestLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 800, render.CanvasSize(800))
	assert.Equal(t, 3000, render.CanvasSize(5000))

	assert.Equal(t, 720, render.CodeSize(800), "90% wins for large canvases")
	assert.Equal(t, 88, render.CodeSize(128), "canvas minus 40 wins for small canvases")
	assert.Equal(t, image.Rect(40, 40, 760, 760), render.CodeRect(800))

	assert.Equal(t, 160, render.PreviewSize(800))
	assert.Equal(t, 400, render.PreviewSize(3000))
	assert.Equal(t, 25, render.PreviewSize(128))
}

func TestCode(t *testing.T) {
	t.Parallel()

	img, err := render.Code(checker(), render.Style{Foreground: red, Background: white}, 100)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, white, img.RGBAAt(90, 10))
	assert.Equal(t, white, img.RGBAAt(10, 90))
	assert.Equal(t, red, img.RGBAAt(90, 90))

	_, err = render.Code(qr.Grid{}, render.Style{}, 100)
	assert.True(t, errors.Is(err, render.ErrEmptyGrid))

	_, err = render.Code(checker(), render.Style{}, 0)
	assert.True(t, errors.Is(err, render.ErrNoSurface))
}

func TestDrawGrid_KeepsBackgroundUnderLightModules(t *testing.T) {
	t.Parallel()

	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	render.Fill(dst, white)
	require.NoError(t, render.DrawGrid(dst, image.Rect(2, 2, 8, 8), checker(), black))

	assert.Equal(t, white, dst.RGBAAt(0, 0), "outside the rect")
	assert.Equal(t, black, dst.RGBAAt(3, 3))
	assert.Equal(t, white, dst.RGBAAt(6, 3))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	img, err := render.Preview(checker(), render.Style{Foreground: black, Background: white}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestSVG(t *testing.T) {
	t.Parallel()

	style := render.Style{Foreground: red, Background: color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}}

	t.Run("background and foreground", func(t *testing.T) {
		t.Parallel()
		doc, err := render.SVG(checker(), style, 800)
		require.NoError(t, err)
		s := string(doc)
		assert.Contains(t, s, `<rect width="800" height="800" fill="#123456"/>`)
		assert.Contains(t, s, `<path fill="#ff0000" d="M0 0h1v1h-1zM1 1h1v1h-1z"/>`)
		assert.Contains(t, s, `translate(0 0) scale(400)`)
	})

	t.Run("margin insets by twenty per side", func(t *testing.T) {
		t.Parallel()
		m := style
		m.IncludeMargin = true
		doc, err := render.SVG(checker(), m, 840)
		require.NoError(t, err)
		assert.Contains(t, string(doc), `translate(20 20) scale(400)`)
	})

	t.Run("horizontal runs merge", func(t *testing.T) {
		t.Parallel()
		g := qr.NewGrid([][]bool{{true, true, true}, {false, false, false}, {true, false, true}})
		doc, err := render.SVG(g, style, 300)
		require.NoError(t, err)
		assert.Contains(t, string(doc), `d="M0 0h3v1h-3zM0 2h1v1h-1zM2 2h1v1h-1z"`)
	})

	t.Run("canvas is capped", func(t *testing.T) {
		t.Parallel()
		doc, err := render.SVG(checker(), style, 4000)
		require.NoError(t, err)
		assert.True(t, regexp.MustCompile(`width="3000" height="3000"`).Match(doc))
	})

	t.Run("empty grid", func(t *testing.T) {
		t.Parallel()
		_, err := render.SVG(qr.Grid{}, style, 300)
		assert.True(t, errors.Is(err, render.ErrEmptyGrid))
	})

	t.Run("real code", func(t *testing.T) {
		t.Parallel()
		g, err := qr.NewEncoder(zap.NewNop()).Encode("https://example.com", qr.LevelM, true)
		require.NoError(t, err)
		doc, err := render.SVG(g, style, 512)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(doc), "</g></svg>"))
	})
}

func TestStage(t *testing.T) {
	t.Parallel()

	stage := render.NewStage(zap.NewNop())
	target := stage.Mount(checker(), render.Style{Foreground: black, Background: white}, 64)
	assert.Equal(t, 1, stage.Attached())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	img, err := target.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	select {
	case <-target.Ready():
	default:
		t.Fatal("ready must be closed after Wait returns")
	}

	target.Detach()
	target.Detach()
	assert.Equal(t, 0, stage.Attached())
}

func TestStage_RenderFailureStillSignalsReady(t *testing.T) {
	t.Parallel()

	stage := render.NewStage(zap.NewNop())
	target := stage.Mount(qr.Grid{}, render.Style{}, 64)
	defer target.Detach()

	_, err := target.Wait(context.Background())
	assert.True(t, errors.Is(err, render.ErrEmptyGrid))
}

func TestTarget_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	stage := render.NewStage(zap.NewNop())
	target := stage.Mount(checker(), render.Style{}, 64)
	defer target.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := target.Wait(ctx)
	// rendering may already have finished; either outcome is a closed select
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}
