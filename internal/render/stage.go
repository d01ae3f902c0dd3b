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

package render

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
)

// Stage hosts off-document render targets. Every mounted target stays
// attached until it is detached.
type Stage struct {
	logger  *zap.Logger
	mu      sync.Mutex
	targets map[*Target]struct{}
}

// NewStage creates an empty stage.
func NewStage(logger *zap.Logger) *Stage {
	return &Stage{
		logger:  logger,
		targets: make(map[*Target]struct{}),
	}
}

// Mount attaches a new target and starts rendering g into it. Ready on the
// returned target closes once the pixels can be read.
func (s *Stage) Mount(g qr.Grid, style Style, size int) *Target {
	t := &Target{
		stage: s,
		ready: make(chan struct{}),
	}

	s.mu.Lock()
	s.targets[t] = struct{}{}
	attached := len(s.targets)
	s.mu.Unlock()

	s.logger.Debug("Render target mounted", zap.Int("size", size), zap.Int("attached", attached))

	go t.render(g, style, size)
	return t
}

// Attached is the number of targets currently mounted.
func (s *Stage) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

func (s *Stage) detach(t *Target) {
	s.mu.Lock()
	delete(s.targets, t)
	attached := len(s.targets)
	s.mu.Unlock()

	s.logger.Debug("Render target detached", zap.Int("attached", attached))
}

// Target is a hidden surface holding one rendered code.
type Target struct {
	stage *Stage
	ready chan struct{}
	img   *image.RGBA
	err   error
	once  sync.Once
}

func (t *Target) render(g qr.Grid, style Style, size int) {
	defer close(t.ready)
	t.img, t.err = Code(g, style, size)
}

// Ready closes when rendering has finished, successfully or not.
func (t *Target) Ready() <-chan struct{} {
	return t.ready
}

// Wait blocks until the target is ready or ctx is done.
func (t *Target) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.ready:
		return t.img, t.err
	}
}

// Detach removes the target from its stage. It is safe to call more than once.
func (t *Target) Detach() {
	t.once.Do(func() {
		t.stage.detach(t)
	})
}
