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

package studio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Factory builds the controller for a new session.
type Factory func(lang language.Tag) *Controller

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions maps browser sessions to their controllers and forgets sessions
// idle for longer than the configured timeout.
type Sessions struct {
	factory Factory
	idle    time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	items map[uuid.UUID]*session
}

// NewSessions creates an empty registry.
func NewSessions(factory Factory, idle time.Duration, logger *zap.Logger) *Sessions {
	return &Sessions{
		factory: factory,
		idle:    idle,
		logger:  logger,
		now:     time.Now,
		items:   make(map[uuid.UUID]*session),
	}
}

// Create starts a session for a visitor speaking lang.
func (s *Sessions) Create(lang language.Tag) (uuid.UUID, *Controller) {
	id := uuid.New()
	ctrl := s.factory(lang)

	s.mu.Lock()
	s.items[id] = &session{ctrl: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debug("Session created", zap.String("session", id.String()), zap.String("lang", lang.String()))
	return id, ctrl
}

// Get returns the controller of session id and marks it as active.
func (s *Sessions) Get(id uuid.UUID) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.ctrl, true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops idle sessions and returns how many were dropped.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			delete(s.items, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) error {
	interval := s.idle / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Idle sessions dropped", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
