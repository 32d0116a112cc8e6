package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/dataset"
)

type fakeBuilder struct {
	builds int
	err    error
}

func (f *fakeBuilder) Build(ctx context.Context) (*dataset.Snapshot, error) {
	f.builds++
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Snapshot{
		ID:      fmt.Sprintf("snap-%d", f.builds),
		BuiltAt: time.Now(),
		Reviews: []dataset.Review{{AppName: "ChatApp", ReviewText: "ok", Rating: 4.0}},
	}, nil
}

func TestCurrentBuildsOnceWithinTTL(t *testing.T) {
	builder := &fakeBuilder{}
	s := New(builder, time.Hour)

	first, err := s.Current(context.Background())
	require.NoError(t, err)

	second, err := s.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, builder.builds)
	assert.Same(t, first, second)
}

func TestCurrentRebuildsWhenStale(t *testing.T) {
	builder := &fakeBuilder{}
	s := New(builder, time.Nanosecond)

	first, err := s.Current(context.Background())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	second, err := s.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, builder.builds)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRefreshForcesRebuild(t *testing.T) {
	builder := &fakeBuilder{}
	s := New(builder, time.Hour)

	_, err := s.Current(context.Background())
	require.NoError(t, err)

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, builder.builds)
	assert.Equal(t, "snap-2", snap.ID)
}

func TestBuildFailureSurfaces(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("source down")}
	s := New(builder, time.Hour)

	_, err := s.Current(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source down")

	status := s.Status()
	assert.True(t, status.Stale)
	assert.Empty(t, status.SnapshotID)
}

func TestStatus(t *testing.T) {
	builder := &fakeBuilder{}
	s := New(builder, time.Hour)

	status := s.Status()
	assert.True(t, status.Stale)

	_, err := s.Current(context.Background())
	require.NoError(t, err)

	status = s.Status()
	assert.False(t, status.Stale)
	assert.Equal(t, "snap-1", status.SnapshotID)
	assert.Equal(t, 1, status.Reviews)
	assert.Equal(t, status.BuiltAt.Add(time.Hour), status.ExpiresAt)
}
