package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
)

func TestSeedFillsEmptyCollectionsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Tasks.Add(ctx, practiceTask())
	require.NoError(t, err)

	added, err := Seed(ctx, f.store, f.now)
	require.NoError(t, err)
	assert.NotContains(t, added, CollectionTasks)
	assert.Equal(t, 4, added[CollectionMoodEntries])
	assert.Equal(t, 1, added[CollectionSupportPlans])

	tasks, err := f.store.Tasks.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	sessions, err := f.store.Sessions.List(ctx, "EST-1234")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "2024-01-22", sessions[0].Date)
	assert.Equal(t, models.SessionPending, sessions[0].Status)

	again, err := Seed(ctx, f.store, f.now)
	require.NoError(t, err)
	assert.Empty(t, again)
}
