package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/pkg/logger"
)

type Source interface {
	Fetch(ctx context.Context) (dataset.RawTable, error)
}

type Builder struct {
	source Source
}

func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// Build runs the full pipeline: fetch, clean, enrich. A fetch or structural
// failure produces no snapshot; there is no partial table.
func (b *Builder) Build(ctx context.Context) (*dataset.Snapshot, error) {
	start := time.Now()

	raw, err := b.source.Fetch(ctx)
	if err != nil {
		metrics.SnapshotBuilds.WithLabelValues("source_error").Inc()
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	rows, stats, err := Clean(raw)
	if err != nil {
		metrics.SnapshotBuilds.WithLabelValues("structural_error").Inc()
		return nil, fmt.Errorf("failed to clean dataset: %w", err)
	}

	snapshot := &dataset.Snapshot{
		ID:          uuid.NewString(),
		BuiltAt:     time.Now(),
		SourceRows:  stats.SourceRows,
		DroppedRows: stats.DroppedRows,
		Reviews:     Enrich(rows),
	}

	metrics.SnapshotBuilds.WithLabelValues("success").Inc()
	metrics.SnapshotBuildDuration.Observe(time.Since(start).Seconds())
	metrics.SnapshotRows.Set(float64(len(snapshot.Reviews)))
	metrics.RowsDropped.Add(float64(stats.DroppedRows))

	logger.Info("Dataset snapshot built",
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("source_rows", stats.SourceRows),
		zap.Int("dropped_rows", stats.DroppedRows),
		zap.Int("reviews", len(snapshot.Reviews)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return snapshot, nil
}
