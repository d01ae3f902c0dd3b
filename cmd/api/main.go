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

// Package main is the entry point for the QR studio service.
// It serves the interactive QR code studio together with a REST generation
// API and a health check endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/config"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/export"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/logger"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/render"
	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/studio"
	transport "github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/transport/http"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file (optional in production) before the logger reads LOG_ENV
	envErr := godotenv.Load()

	log := logger.InitLogger()
	defer logger.Sync()

	log.Info("Starting QR studio",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)
	if envErr != nil {
		log.Debug("No .env file found, using environment variables")
	} else {
		log.Info(".env file loaded successfully")
	}

	cfg, err := config.LoadConfig(log)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	defaults, err := cfg.DefaultSettings()
	if err != nil {
		log.Fatal("Invalid default settings", zap.Error(err))
	}

	encoder := qr.NewEncoder(log)
	pipeline := export.NewPipeline(encoder, render.NewStage(log), log,
		export.WithRenderTimeout(cfg.RenderTimeout),
	)
	log.Debug("Export pipeline initialized", zap.Duration("render_timeout", cfg.RenderTimeout))

	sessions := studio.NewSessions(func(lang language.Tag) *studio.Controller {
		return studio.NewController(encoder, pipeline, log, studio.Options{
			Defaults:      defaults,
			Limits:        cfg.Limits(),
			MaxTextLength: cfg.MaxTextLength,
			CopyFeedback:  cfg.CopyFeedback,
			Language:      lang,
		})
	}, cfg.SessionIdleTimeout, log)

	blobs := export.NewBlobStore(cfg.DownloadTTL, log)
	defer blobs.Close()

	h := transport.NewHandler(pipeline, log, cfg.MaxBodySize, cfg.MaxTextLength, cfg.Limits(), defaults)
	ui := transport.NewUI(sessions, blobs, log, transport.UIConfig{
		Limits:        cfg.Limits(),
		MaxTextLength: cfg.MaxTextLength,
		CopyFeedback:  cfg.CopyFeedback,
		SourceURL:     cfg.SourceURL,
	})

	// Configure HTTP server with timeouts and security settings
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           transport.NewRouter(h, ui, log),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", zap.String("port", cfg.Port), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn("Shutdown timeout exceeded, closing connections")
				_ = srv.Close()
			}
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		blobs.Close()
		logger.Sync()
		os.Exit(1)
	}

	log.Info("Server exited gracefully")
}
