package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/domain"
)

func TestScanRepository_InsertGet(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository()

	job := domain.NewScanJob("a", "https://example.com/repo", []string{"trivy"}, "u1", time.Now())
	require.NoError(t, repo.Insert(ctx, job))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/repo", got.Target)
	assert.Equal(t, domain.ScanStatusStarted, got.Status)

	got.Target = "mutated"
	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/repo", again.Target)

	assert.ErrorIs(t, repo.Insert(ctx, job), domain.ErrConflict)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanRepository_UpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository()
	require.NoError(t, repo.Insert(ctx, domain.NewScanJob("a", "t", nil, "", time.Now())))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "a", func(job *domain.ScanJob) error {
		job.Progress = 50
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)

	updated, err := repo.Update(ctx, "a", func(job *domain.ScanJob) error {
		return job.Advance(domain.ScanStatusRunning, domain.ProgressRunning, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressRunning, updated.Progress)

	_, err = repo.Update(ctx, "missing", func(*domain.ScanJob) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanRepository_ListFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository()
	base := time.Now()
	require.NoError(t, repo.Insert(ctx, domain.NewScanJob("a", "t", nil, "u1", base)))
	require.NoError(t, repo.Insert(ctx, domain.NewScanJob("b", "t", nil, "u2", base.Add(time.Second))))
	require.NoError(t, repo.Insert(ctx, domain.NewScanJob("c", "t", nil, "u1", base.Add(2*time.Second))))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	mine, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c", mine[0].ID)
	assert.Equal(t, "a", mine[1].ID)
}

func TestScanRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			assert.NoError(t, repo.Insert(ctx, domain.NewScanJob(id, "t", nil, "", time.Now())))
			_, err := repo.Update(ctx, id, func(job *domain.ScanJob) error {
				return job.Advance(domain.ScanStatusRunning, domain.ProgressRunning, time.Now())
			})
			assert.NoError(t, err)
			_, err = repo.Get(ctx, id)
			assert.NoError(t, err)
			_, err = repo.List(ctx, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
