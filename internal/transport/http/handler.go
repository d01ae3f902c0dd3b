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

// Package http provides the HTTP transport layer for the QR studio: the REST
// generation API, health checks and the interactive studio page.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/export"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

// Handler serves the stateless REST API.
type Handler struct {
	runner        export.Runner
	logger        *zap.Logger
	maxBodySize   int64
	maxTextLength int
	limits        validate.Limits
	defaults      settings.Defaults
}

// NewHandler creates a new HTTP handler for QR code generation.
func NewHandler(runner export.Runner, logger *zap.Logger, maxBodySize int64, maxTextLength int, limits validate.Limits, defaults settings.Defaults) *Handler {
	return &Handler{
		runner:        runner,
		logger:        logger,
		maxBodySize:   maxBodySize,
		maxTextLength: maxTextLength,
		limits:        limits,
		defaults:      defaults,
	}
}

// Generate handles POST /api/v1/generate requests. The body is the text to
// encode; format, size, level, fg, bg and margin query parameters override
// the defaults.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	// Fast fail for obvious oversized requests
	if r.ContentLength > h.maxBodySize {
		h.logger.Warn("Request body too large (ContentLength check)",
			zap.Int64("content_length", r.ContentLength),
			zap.Int64("max_allowed", h.maxBodySize),
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("Request body too large",
				zap.Int64("max_allowed", h.maxBodySize),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Error("Failed to read request body", zap.Error(err), zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	if buf.Len() == 0 {
		h.logger.Warn("Empty request body received", zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, "Request body is empty", http.StatusBadRequest)
		return
	}

	req, err := h.parseRequest(r, buf.String())
	if err != nil {
		h.logger.Warn("Invalid generate request", zap.Error(err), zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.runner.Export(r.Context(), req)
	if err != nil {
		if errors.Is(err, qr.ErrEmptyContent) {
			http.Error(w, "Request body is blank", http.StatusBadRequest)
			return
		}
		if errors.Is(err, qr.ErrEncodeFailed) {
			h.logger.Warn("Content does not fit in a QR code",
				zap.Error(err),
				zap.Int("data_length", buf.Len()),
				zap.String("level", string(req.Settings.Level)),
			)
			http.Error(w, "Content too long for the selected error correction level", http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("Failed to generate QR code",
			zap.Error(err),
			zap.Int("data_length", buf.Len()),
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeResult(w, res, h.logger)

	h.logger.Info("QR code request completed successfully",
		zap.Int("data_length", buf.Len()),
		zap.String("format", string(res.Format)),
		zap.Int("size", req.Settings.Size),
		zap.Int("output_size", len(res.Data)),
		zap.String("remote_addr", r.RemoteAddr),
	)
}

func (h *Handler) parseRequest(r *http.Request, text string) (export.Request, error) {
	q := r.URL.Query()
	s := h.defaults.Settings()
	s.Text = validate.TruncateText(text, h.maxTextLength)
	format := export.FormatPNG

	if v := q.Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			return export.Request{}, err
		}
		format = f
	}
	if v := q.Get("size"); v != "" {
		n, ok := h.limits.ClampSize(v)
		if !ok {
			return export.Request{}, fmt.Errorf("invalid size parameter %q: must be an integer", v)
		}
		s.Size = n
	}
	if v := q.Get("level"); v != "" {
		l, err := qr.ParseLevel(v)
		if err != nil {
			return export.Request{}, err
		}
		s.Level = l
	}
	for param, field := range map[string]*string{"fg": &s.Foreground, "bg": &s.Background} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		if !validate.IsValidHexColor(v) {
			return export.Request{}, fmt.Errorf("invalid %s parameter %q: %w", param, v, validate.ErrInvalidHexColor)
		}
		*field = validate.NormalizeHexColor(v)
	}
	if v := q.Get("margin"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return export.Request{}, fmt.Errorf("invalid margin parameter %q", v)
		}
		s.IncludeMargin = b
	}
	return export.Request{Settings: s, Format: format}, nil
}

// writeResult sends res as an attachment.
func writeResult(w http.ResponseWriter, res *export.Result, logger *zap.Logger) {
	w.Header().Set("Content-Type", res.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(res.Data); err != nil {
		logger.Error("Failed to write response", zap.Error(err), zap.Int("output_size", len(res.Data)))
	}
}

// HealthCheck handles GET /health requests for liveness/readiness probes.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check request received",
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to encode health check response",
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr),
		)
	}
}
