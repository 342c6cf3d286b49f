package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

type mockEventRepo struct {
	deleted    int64
	deleteErr  error
	lastCutoff atomic.Value
	calls      atomic.Int32
}

func (m *mockEventRepo) Create(ctx context.Context, params model.CreatePurchaseEventParams) error {
	return nil
}

func (m *mockEventRepo) FindRecent(ctx context.Context, limit int) ([]model.PurchaseEvent, error) {
	return nil, nil
}

func (m *mockEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff.Store(cutoff)
	m.calls.Add(1)
	return m.deleted, m.deleteErr
}

type mockPruner struct {
	pruned atomic.Int32
}

func (m *mockPruner) PruneRecords() int {
	m.pruned.Add(1)
	return 3
}

func TestCleanupRunsBothTargets(t *testing.T) {
	repo := &mockEventRepo{deleted: 5}
	pruner := &mockPruner{}

	job := NewCleanupJob(repo, pruner, 24*time.Hour, time.Hour)
	job.cleanup()

	assert.Equal(t, int32(1), repo.calls.Load())
	assert.Equal(t, int32(1), pruner.pruned.Load())

	cutoff := repo.lastCutoff.Load().(time.Time)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), cutoff, time.Minute)
}

func TestCleanupRunsImmediatelyOnStart(t *testing.T) {
	repo := &mockEventRepo{}
	pruner := &mockPruner{}

	job := NewCleanupJob(repo, pruner, 24*time.Hour, time.Hour)
	job.Start()
	defer job.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.calls.Load() >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("cleanup did not run on start")
}

func TestCleanupToleratesNilCollaborators(t *testing.T) {
	job := NewCleanupJob(nil, nil, 24*time.Hour, time.Hour)
	assert.NotPanics(t, func() { job.cleanup() })
}
