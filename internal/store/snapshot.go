package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/pkg/logger"
)

type SnapshotBuilder interface {
	Build(ctx context.Context) (*dataset.Snapshot, error)
}

// Store owns the cached snapshot: one immutable value plus its build time,
// rebuilt through the pipeline once the TTL has passed. Reads during the
// validity window never block each other; rebuilds are single-writer.
type Store struct {
	builder SnapshotBuilder
	ttl     time.Duration

	mu       sync.RWMutex
	snapshot *dataset.Snapshot

	scheduler *cron.Cron
}

type Status struct {
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	BuiltAt     time.Time `json:"built_at,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	Stale       bool      `json:"stale"`
	Reviews     int       `json:"reviews"`
	SourceRows  int       `json:"source_rows"`
	DroppedRows int       `json:"dropped_rows"`
}

func New(builder SnapshotBuilder, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		builder: builder,
		ttl:     ttl,
	}
}

// Current returns the cached snapshot, rebuilding it first when missing or
// stale. A failed rebuild surfaces the error; the expired snapshot is not
// served in its place.
func (s *Store) Current(ctx context.Context) (*dataset.Snapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap != nil && !s.expired(snap) {
		return snap, nil
	}

	return s.rebuild(ctx, false)
}

func (s *Store) Refresh(ctx context.Context) (*dataset.Snapshot, error) {
	return s.rebuild(ctx, true)
}

func (s *Store) rebuild(ctx context.Context, force bool) (*dataset.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.snapshot != nil && !s.expired(s.snapshot) {
		return s.snapshot, nil
	}

	snap, err := s.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild snapshot: %w", err)
	}

	s.snapshot = snap
	return snap, nil
}

func (s *Store) expired(snap *dataset.Snapshot) bool {
	return time.Since(snap.BuiltAt) >= s.ttl
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return Status{Stale: true}
	}

	return Status{
		SnapshotID:  s.snapshot.ID,
		BuiltAt:     s.snapshot.BuiltAt,
		ExpiresAt:   s.snapshot.BuiltAt.Add(s.ttl),
		Stale:       s.expired(s.snapshot),
		Reviews:     len(s.snapshot.Reviews),
		SourceRows:  s.snapshot.SourceRows,
		DroppedRows: s.snapshot.DroppedRows,
	}
}

// StartSchedule refreshes the snapshot in the background on a cron spec, so
// interactive requests rarely pay the rebuild cost themselves.
func (s *Store) StartSchedule(spec string) error {
	if spec == "" {
		return nil
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(spec, func() {
		if _, err := s.Refresh(context.Background()); err != nil {
			logger.Error("Scheduled snapshot refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	s.scheduler.Start()
	logger.Info("Snapshot refresh schedule started", zap.String("spec", spec))
	return nil
}

func (s *Store) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
