// Package store owns the process-wide renewal cache. The cache is the
// single shared mutable resource of the sync pipeline: one sync
// replaces the whole list atomically, readers always see the last
// successfully cached list. There is deliberately no incremental
// update path and no durable source of truth beyond this cache.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/pkg/logger"
)

// snapshotKey is where the Redis mirror keeps the latest renewal list.
const snapshotKey = "renewals:snapshot"

// SyncStatus reports whether and when the cache was last replaced.
type SyncStatus struct {
	LastSync    *time.Time `json:"lastSync"`
	RecordCount int        `json:"recordCount"`
	HasSynced   bool       `json:"hasSynced"`
}

// Store holds the cached renewals behind a single critical section.
// Optional side-channels (Redis mirror, S3 archive) receive each
// snapshot best-effort; failures there never fail a sync and nothing
// is ever read back from them into the serving path.
type Store struct {
	mu        sync.RWMutex
	renewals  []domain.Renewal
	lastSync  time.Time
	hasSynced bool

	redis    *redis.Client
	archiver *S3Archiver
}

// New creates an empty Store. redisClient and archiver may be nil.
func New(redisClient *redis.Client, archiver *S3Archiver) *Store {
	return &Store{redis: redisClient, archiver: archiver}
}

// Replace swaps in a freshly assembled renewal list and stamps the
// sync time. The swap is the only write path; partial updates do not
// exist.
func (s *Store) Replace(ctx context.Context, renewals []domain.Renewal) {
	now := time.Now().UTC()

	s.mu.Lock()
	s.renewals = renewals
	s.lastSync = now
	s.hasSynced = true
	s.mu.Unlock()

	s.mirror(ctx, renewals, now)
}

// List returns a copy of the cached renewals. Possibly stale, possibly
// empty; callers distinguish "never synced" via Status().HasSynced.
func (s *Store) List() []domain.Renewal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Renewal, len(s.renewals))
	copy(out, s.renewals)
	return out
}

// Get returns the cached renewal with the given id.
func (s *Store) Get(id string) (domain.Renewal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.renewals {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Renewal{}, false
}

// Status reports the last sync time and record count.
func (s *Store) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SyncStatus{
		RecordCount: len(s.renewals),
		HasSynced:   s.hasSynced,
	}
	if s.hasSynced {
		t := s.lastSync
		st.LastSync = &t
	}
	return st
}

// mirror pushes the snapshot to the configured side-channels.
func (s *Store) mirror(ctx context.Context, renewals []domain.Renewal, syncedAt time.Time) {
	if s.redis == nil && s.archiver == nil {
		return
	}

	data, err := json.Marshal(renewals)
	if err != nil {
		logger.Error("failed to encode renewal snapshot", "error", err.Error())
		return
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
			logger.Warn("redis snapshot mirror failed", "error", err.Error())
		}
	}
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, data, syncedAt); err != nil {
			logger.Warn("s3 snapshot archive failed", "error", err.Error())
		}
	}
}
