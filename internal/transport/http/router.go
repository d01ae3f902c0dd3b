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

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the API, the studio page and the download endpoint.
func NewRouter(h *Handler, ui *UI, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(api chi.Router) {
		api.With(MethodMiddleware(http.MethodPost)).Handle("/generate", http.HandlerFunc(h.Generate))
	})

	r.Get("/", ui.Page)
	r.Route("/ui", func(s chi.Router) {
		s.Post("/settings", ui.Settings)
		s.Post("/preset/{index}", ui.Preset)
		s.Post("/reset", ui.Reset)
		s.Post("/download", ui.Download)
		s.Post("/copy", ui.Copy)
		s.Post("/dismiss", ui.Dismiss)
		s.Get("/preview.png", ui.Preview)
	})
	r.Get("/downloads/{id}", ui.Blob)

	return r
}
