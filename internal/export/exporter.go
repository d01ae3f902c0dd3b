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
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Exporter runs at most one export at a time. Calls made while an export is
// running return ErrInProgress without doing any work.
type Exporter struct {
	runner     Runner
	logger     *zap.Logger
	gate       *semaphore.Weighted
	generating atomic.Bool
}

// NewExporter gates runner behind a single slot.
func NewExporter(runner Runner, logger *zap.Logger) *Exporter {
	return &Exporter{
		runner: runner,
		logger: logger,
		gate:   semaphore.NewWeighted(1),
	}
}

// Export runs req unless another export holds the slot.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	if !e.gate.TryAcquire(1) {
		e.logger.Debug("Export ignored, another export is running", zap.String("format", string(req.Format)))
		return nil, ErrInProgress
	}
	e.generating.Store(true)
	defer func() {
		e.generating.Store(false)
		e.gate.Release(1)
	}()

	return e.runner.Export(ctx, req)
}

// Generating reports whether an export is running.
func (e *Exporter) Generating() bool {
	return e.generating.Load()
}
