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
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/export"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/i18n"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/settings"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/studio"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/validate"
)

// SessionCookie names the cookie holding the studio session id.
const SessionCookie = "qr_studio_session"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UIConfig configures the studio page.
type UIConfig struct {
	Limits        validate.Limits
	MaxTextLength int
	CopyFeedback  time.Duration
	SourceURL     string
}

// UI serves the interactive studio. Every action is a datastar request
// answered with server-sent signal and element patches.
type UI struct {
	sessions *studio.Sessions
	blobs    *export.BlobStore
	logger   *zap.Logger
	cfg      UIConfig
}

// NewUI creates the studio handlers.
func NewUI(sessions *studio.Sessions, blobs *export.BlobStore, logger *zap.Logger, cfg UIConfig) *UI {
	return &UI{sessions: sessions, blobs: blobs, logger: logger, cfg: cfg}
}

// signals is the client state posted with every action.
type signals struct {
	Text          string `json:"text"`
	Size          string `json:"size"`
	Foreground    string `json:"foreground"`
	Background    string `json:"background"`
	Level         string `json:"level"`
	IncludeMargin bool   `json:"includeMargin"`
	Format        string `json:"format"`
	Panel         string `json:"panel"`
}

// view is the state pushed back to the client.
type view struct {
	signals
	Generating  bool   `json:"generating"`
	Copied      bool   `json:"copied"`
	CanDownload bool   `json:"canDownload"`
	Error       string `json:"error"`
}

func newView(st studio.State) view {
	s := st.Settings
	return view{
		signals: signals{
			Text:          s.Text,
			Size:          strconv.Itoa(s.Size),
			Foreground:    s.Foreground,
			Background:    s.Background,
			Level:         string(s.Level),
			IncludeMargin: s.IncludeMargin,
			Format:        string(st.Format),
			Panel:         string(st.Panel),
		},
		Generating:  st.Generating,
		Copied:      st.Copied,
		CanDownload: st.CanDownload,
		Error:       st.Error,
	}
}

func (s signals) patch() studio.Patch {
	return studio.Patch{
		Text:          &s.Text,
		Size:          &s.Size,
		Foreground:    &s.Foreground,
		Background:    &s.Background,
		Level:         &s.Level,
		IncludeMargin: &s.IncludeMargin,
		Format:        &s.Format,
		Panel:         &s.Panel,
	}
}

type previewData struct {
	Src         string
	Size        int
	Placeholder string
}

type pageData struct {
	Lang          string
	Signals       string
	State         studio.State
	Preview       previewData
	Limits        validate.Limits
	SizeStep      int
	MaxTextLength int
	Levels        []qr.Level
	Formats       []export.Format
	Presets       [len(settings.Presets)]settings.Preset
	SourceURL     string
	Copied        string
	Generating    string
}

// controller resolves the session of r, creating one when the cookie is
// missing or stale. It must run before any response header is written.
func (u *UI) controller(w http.ResponseWriter, r *http.Request) *studio.Controller {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if ctrl, ok := u.sessions.Get(id); ok {
				return ctrl
			}
		}
	}

	id, ctrl := u.sessions.Create(i18n.Match(r.Header.Get("Accept-Language")))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctrl
}

// Page handles GET /.
func (u *UI) Page(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)
	st := ctrl.State()

	sig, err := json.Marshal(newView(st))
	if err != nil {
		u.logger.Error("Failed to encode signals", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	lang := ctrl.Language()
	data := pageData{
		Lang:          lang.String(),
		Signals:       string(sig),
		State:         st,
		Preview:       u.previewData(ctrl, st),
		Limits:        u.cfg.Limits,
		SizeStep:      validate.SizeStep,
		MaxTextLength: u.cfg.MaxTextLength,
		Levels:        qr.Levels,
		Formats:       export.Formats,
		Presets:       settings.Presets,
		SourceURL:     u.cfg.SourceURL,
		Copied:        i18n.Message(lang, i18n.KeyCopied),
		Generating:    i18n.Message(lang, i18n.KeyGenerating),
	}

	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "page", data); err != nil {
		u.logger.Error("Failed to render studio page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(b.String()))
}

func (u *UI) previewData(ctrl *studio.Controller, st studio.State) previewData {
	if !st.Settings.HasContent() {
		return previewData{Placeholder: i18n.Message(ctrl.Language(), i18n.KeyEmptyText)}
	}
	return previewData{
		Src:  "/ui/preview.png?v=" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Size: render.PreviewSize(st.Settings.Size),
	}
}

// Settings handles POST /ui/settings.
func (u *UI) Settings(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)

	var in signals
	if err := datastar.ReadSignals(r, &in); err != nil {
		u.logger.Warn("Failed to read signals", zap.Error(err))
		http.Error(w, "Invalid signals", http.StatusBadRequest)
		return
	}
	ch := ctrl.Apply(in.patch())

	sse := datastar.NewSSE(w, r)
	// always echo the state so rejected input snaps back to the accepted value
	u.sync(sse, ctrl, ch.Settings)
}

// Preset handles POST /ui/preset/{index}.
func (u *UI) Preset(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)

	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		err = ctrl.ApplyPreset(i)
	}
	if err != nil {
		http.Error(w, "Unknown preset", http.StatusNotFound)
		return
	}
	u.sync(datastar.NewSSE(w, r), ctrl, true)
}

// Reset handles POST /ui/reset.
func (u *UI) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)
	ctrl.Reset()
	u.sync(datastar.NewSSE(w, r), ctrl, true)
}

// Dismiss handles POST /ui/dismiss.
func (u *UI) Dismiss(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)
	ctrl.DismissError()
	u.sync(datastar.NewSSE(w, r), ctrl, false)
}

// Download handles POST /ui/download.
func (u *UI) Download(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)
	sse := datastar.NewSSE(w, r)

	if ctrl.CanDownload() {
		if err := sse.PatchSignals([]byte(`{"generating":true,"canDownload":false}`)); err != nil {
			u.logger.Debug("Failed to patch signals", zap.Error(err))
		}
	}

	err := ctrl.Download(r.Context(), &sseTrigger{sse: sse, blobs: u.blobs})
	switch {
	case err == nil:
	case errors.Is(err, studio.ErrEmptyText), errors.Is(err, export.ErrInProgress):
		u.logger.Debug("Download ignored", zap.Error(err))
	default:
		u.logger.Warn("Download failed", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
	}
	u.sync(sse, ctrl, false)
}

// Copy handles POST /ui/copy. The stream stays open for the confirmation
// window and then clears the copied flag.
func (u *UI) Copy(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)
	sse := datastar.NewSSE(w, r)

	err := ctrl.Copy(r.Context(), &sseClipboard{sse: sse})
	u.sync(sse, ctrl, false)
	if err != nil {
		u.logger.Debug("Copy not performed", zap.Error(err))
		return
	}

	timer := time.NewTimer(u.cfg.CopyFeedback)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
	case <-timer.C:
		u.sync(sse, ctrl, false)
	}
}

// Preview handles GET /ui/preview.png.
func (u *UI) Preview(w http.ResponseWriter, r *http.Request) {
	ctrl := u.controller(w, r)

	data, err := ctrl.Preview()
	if err != nil {
		if errors.Is(err, studio.ErrEmptyText) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		u.logger.Warn("Preview failed", zap.Error(err))
		http.Error(w, "Preview unavailable", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// Blob handles GET /downloads/{id}. A blob is served once and then released.
func (u *UI) Blob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	res, err := u.blobs.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeResult(w, res, u.logger)
	u.blobs.Release(id)
}

// sync pushes the controller state to the client.
func (u *UI) sync(sse *datastar.ServerSentEventGenerator, ctrl *studio.Controller, preview bool) {
	st := ctrl.State()

	sig, err := json.Marshal(newView(st))
	if err == nil {
		err = sse.PatchSignals(sig)
	}
	if err == nil {
		err = u.patchFragment(sse, "error", st)
	}
	if err == nil && preview {
		err = u.patchFragment(sse, "preview", u.previewData(ctrl, st))
	}
	if err != nil {
		u.logger.Debug("Failed to push state", zap.Error(err))
	}
}

func (u *UI) patchFragment(sse *datastar.ServerSentEventGenerator, name string, data any) error {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return sse.PatchElements(b.String())
}

// sseTrigger parks the export in the blob store and has the browser fetch it.
type sseTrigger struct {
	sse   *datastar.ServerSentEventGenerator
	blobs *export.BlobStore
}

func (t *sseTrigger) Trigger(_ context.Context, res *export.Result) error {
	id := t.blobs.Put(res)
	href, _ := json.Marshal("/downloads/" + id.String())
	name, _ := json.Marshal(res.Filename)
	script := fmt.Sprintf(
		"const a = document.createElement('a'); a.href = %s; a.download = %s; document.body.appendChild(a); a.click(); a.remove();",
		href, name,
	)
	if err := t.sse.ExecuteScript(script); err != nil {
		t.blobs.Release(id)
		return err
	}
	return nil
}

// sseClipboard writes to the browser clipboard through the open stream.
type sseClipboard struct {
	sse *datastar.ServerSentEventGenerator
}

func (c *sseClipboard) WriteText(_ context.Context, text string) error {
	quoted, err := json.Marshal(text)
	if err != nil {
		return err
	}
	return c.sse.ExecuteScript(fmt.Sprintf("navigator.clipboard.writeText(%s);", quoted))
}
