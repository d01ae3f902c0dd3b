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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore holds finished exports until the browser fetches them. Each blob
// is released automatically once its TTL elapses.
type BlobStore struct {
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	blobs map[uuid.UUID]*blob
}

type blob struct {
	result *Result
	timer  *time.Timer
}

// NewBlobStore creates a store releasing blobs after ttl.
func NewBlobStore(ttl time.Duration, logger *zap.Logger) *BlobStore {
	return &BlobStore{
		ttl:    ttl,
		logger: logger,
		blobs:  make(map[uuid.UUID]*blob),
	}
}

// Put stores res and returns its download id.
func (s *BlobStore) Put(res *Result) uuid.UUID {
	id := uuid.New()
	b := &blob{result: res}

	s.mu.Lock()
	s.blobs[id] = b
	b.timer = time.AfterFunc(s.ttl, func() { s.Release(id) })
	s.mu.Unlock()

	s.logger.Debug("Download blob stored",
		zap.String("id", id.String()),
		zap.String("filename", res.Filename),
		zap.Duration("ttl", s.ttl),
	)
	return id
}

// Get returns the blob stored under id.
func (s *BlobStore) Get(id uuid.UUID) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return b.result, nil
}

// Release drops the blob stored under id. It reports whether one was present.
func (s *BlobStore) Release(id uuid.UUID) bool {
	s.mu.Lock()
	b, ok := s.blobs[id]
	if ok {
		delete(s.blobs, id)
		b.timer.Stop()
	}
	s.mu.Unlock()

	if ok {
		s.logger.Debug("Download blob released", zap.String("id", id.String()))
	}
	return ok
}

// Len is the number of blobs held.
func (s *BlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// Close releases every blob.
func (s *BlobStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.blobs {
		b.timer.Stop()
		delete(s.blobs, id)
	}
}
