package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

func TestTimelineRepository_GetByScanKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineRepository(logger.NewNop())

	require.NoError(t, repo.Create(ctx, &domain.ScanEvent{ScanID: "a", Type: domain.EventTypeScanStarted}))
	require.NoError(t, repo.Create(ctx, &domain.ScanEvent{ScanID: "b", Type: domain.EventTypeScanStarted}))
	require.NoError(t, repo.Create(ctx, &domain.ScanEvent{ScanID: "a", Type: domain.EventTypeScanRunning, Progress: 30}))

	events, err := repo.GetByScan(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeScanStarted, events[0].Type)
	assert.Equal(t, domain.EventTypeScanRunning, events[1].Type)
	assert.Less(t, events[0].ID, events[1].ID)

	none, err := repo.GetByScan(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTimelineRepository_GetAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineRepository(logger.NewNop())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &domain.ScanEvent{ScanID: id}))
	}

	events, err := repo.GetAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].ScanID)
	assert.Equal(t, "b", events[1].ScanID)
}
