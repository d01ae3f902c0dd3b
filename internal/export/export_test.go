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

package export_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/export"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
)

var fixedNow = time.UnixMilli(1760000000123)

func newPipeline(t *testing.T, opts ...export.Option) (*export.Pipeline, *render.Stage) {
	t.Helper()
	logger := zap.NewNop()
	stage := render.NewStage(logger)
	opts = append([]export.Option{export.WithClock(func() time.Time { return fixedNow })}, opts...)
	return export.NewPipeline(qr.NewEncoder(logger), stage, logger, opts...), stage
}

func sample() settings.Settings {
	s := settings.Builtin
	s.Text = "https://example.com"
	s.Size = 800
	s.Level = qr.LevelQ
	return s
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]export.Format{
		"png": export.FormatPNG, "raster-lossless": export.FormatPNG,
		"JPEG": export.FormatJPEG, "jpg": export.FormatJPEG, "raster-lossy": export.FormatJPEG,
		"svg": export.FormatSVG, "vector": export.FormatSVG,
	}
	for in, want := range cases {
		got, err := export.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := export.ParseFormat("gif")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
}

func TestFormatMetadata(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", export.FormatPNG.MIMEType())
	assert.Equal(t, "image/jpeg", export.FormatJPEG.MIMEType())
	assert.Equal(t, "image/svg+xml", export.FormatSVG.MIMEType())
	assert.Equal(t, "qr-1760000000123.jpeg", export.Filename(export.FormatJPEG, fixedNow))
}

func TestPipeline_PNGScenario(t *testing.T) {
	t.Parallel()
	p, stage := newPipeline(t)

	s := sample()
	s.IncludeMargin = false
	s.Foreground = "#ff0000"
	res, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatPNG})
	require.NoError(t, err)

	assert.Equal(t, "qr-1760000000123.png", res.Filename)
	assert.Equal(t, "image/png", res.MIMEType)
	assert.Equal(t, 0, stage.Attached())

	img, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 800, 800), img.Bounds())

	fg := color.RGBAModel.Convert(color.RGBA{R: 0xff, A: 0xff})
	bg := color.RGBAModel.Convert(color.White)
	at := func(x, y int) color.Color { return color.RGBAModel.Convert(img.At(x, y)) }

	// the code spans [40, 760) and its finder patterns touch the corners
	assert.Equal(t, bg, at(39, 39))
	assert.Equal(t, fg, at(40, 40))
	assert.Equal(t, fg, at(759, 40))
	assert.Equal(t, bg, at(760, 40))
	assert.Equal(t, fg, at(40, 759))
	assert.Equal(t, bg, at(40, 760))
}

func TestPipeline_JPEG(t *testing.T) {
	t.Parallel()
	p, stage := newPipeline(t)

	s := sample()
	s.Size = 5000
	res, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatJPEG})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIMEType)
	assert.True(t, strings.HasSuffix(res.Filename, ".jpeg"))
	assert.Equal(t, 0, stage.Attached())

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Width, "canvas is capped at the maximum size")
}

func TestPipeline_SVG(t *testing.T) {
	t.Parallel()
	p, stage := newPipeline(t)

	s := sample()
	s.Foreground = "#112233"
	s.Background = "#FFEEDD"
	res, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatSVG})
	require.NoError(t, err)

	doc := string(res.Data)
	assert.Equal(t, "image/svg+xml", res.MIMEType)
	assert.Equal(t, "qr-1760000000123.svg", res.Filename)
	assert.Contains(t, doc, `<rect width="800" height="800" fill="#ffeedd"/>`)
	assert.Contains(t, doc, `<path fill="#112233"`)
	assert.Contains(t, doc, `translate(20 20)`)
	assert.Equal(t, 0, stage.Attached(), "vector exports never mount a target")
}

func TestPipeline_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing surface", func(t *testing.T) {
		t.Parallel()
		p, stage := newPipeline(t, export.WithSurface(func(int) (*image.RGBA, error) {
			return nil, render.ErrNoSurface
		}))
		res, err := p.Export(context.Background(), export.Request{Settings: sample(), Format: export.FormatPNG})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, export.ErrExportFailed))
		assert.True(t, errors.Is(err, render.ErrNoSurface))
		assert.Equal(t, 0, stage.Attached())
	})

	t.Run("render target failure detaches target", func(t *testing.T) {
		t.Parallel()
		p, stage := newPipeline(t)
		s := sample()
		s.Size = 1 // leaves no room for the code
		res, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatPNG})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, render.ErrNoSurface))
		assert.Equal(t, 0, stage.Attached())
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		p, _ := newPipeline(t)
		s := sample()
		s.Text = " "
		_, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatSVG})
		assert.True(t, errors.Is(err, qr.ErrEmptyContent))
	})

	t.Run("invalid color", func(t *testing.T) {
		t.Parallel()
		p, _ := newPipeline(t)
		s := sample()
		s.Foreground = "#12"
		_, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatPNG})
		assert.True(t, errors.Is(err, export.ErrExportFailed))
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		p, _ := newPipeline(t)
		_, err := p.Export(context.Background(), export.Request{Settings: sample(), Format: "gif"})
		assert.True(t, errors.Is(err, export.ErrUnknownFormat))
	})
}

func TestPipeline_IgnoresCancellationOnceStarted(t *testing.T) {
	t.Parallel()
	p, stage := newPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Export(ctx, export.Request{Settings: sample(), Format: export.FormatPNG})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data)
	assert.Equal(t, 0, stage.Attached())
}

func TestPipeline_LogsFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)
	p := export.NewPipeline(qr.NewEncoder(logger), render.NewStage(logger), logger)

	s := sample()
	s.Background = "bad"
	_, err := p.Export(context.Background(), export.Request{Settings: s, Format: export.FormatPNG})
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Export failed").Len())
}

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (r *blockingRunner) Export(ctx context.Context, req export.Request) (*export.Result, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	close(r.started)
	<-r.release
	return &export.Result{Data: []byte("ok"), Format: req.Format}, nil
}

func TestExporter_SingleFlight(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	e := export.NewExporter(runner, zap.NewNop())
	assert.False(t, e.Generating())

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background(), export.Request{Format: export.FormatPNG})
		done <- err
	}()

	<-runner.started
	assert.True(t, e.Generating())

	_, err := e.Export(context.Background(), export.Request{Format: export.FormatPNG})
	assert.True(t, errors.Is(err, export.ErrInProgress))

	close(runner.release)
	require.NoError(t, <-done)
	assert.False(t, e.Generating())
	assert.Equal(t, 1, runner.calls)
}

func TestBlobStore(t *testing.T) {
	t.Parallel()

	t.Run("put get release", func(t *testing.T) {
		t.Parallel()
		s := export.NewBlobStore(time.Minute, zap.NewNop())
		id := s.Put(&export.Result{Filename: "qr-1.png"})
		assert.Equal(t, 1, s.Len())

		res, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "qr-1.png", res.Filename)

		assert.True(t, s.Release(id))
		assert.False(t, s.Release(id))
		_, err = s.Get(id)
		assert.True(t, errors.Is(err, export.ErrBlobNotFound))
	})

	t.Run("released after ttl", func(t *testing.T) {
		t.Parallel()
		s := export.NewBlobStore(10*time.Millisecond, zap.NewNop())
		s.Put(&export.Result{})
		assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("close releases everything", func(t *testing.T) {
		t.Parallel()
		s := export.NewBlobStore(time.Minute, zap.NewNop())
		s.Put(&export.Result{})
		s.Put(&export.Result{})
		s.Close()
		assert.Equal(t, 0, s.Len())
	})
}
