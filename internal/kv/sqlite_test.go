package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/pkg/config"
	"github.com/noah-isme/wellness-api/pkg/database"
)

func TestSQLiteSubstrate(t *testing.T) {
	db, err := database.NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	store := NewSQL(db)
	require.NoError(t, store.Migrate(ctx))

	require.NoError(t, store.Set(ctx, "wellness_system_tasks", "[1]"))
	require.NoError(t, store.Set(ctx, "wellness_system_tasks", "[1,2]"))
	require.NoError(t, store.Set(ctx, "wellnessXsystem_other", "x"))

	v, found, err := store.Get(ctx, "wellness_system_tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[1,2]", v)

	keys, err := store.Keys(ctx, "wellness_system_")
	require.NoError(t, err)
	assert.Equal(t, []string{"wellness_system_tasks"}, keys)

	require.NoError(t, store.Delete(ctx, "wellness_system_tasks"))
	_, found, err = store.Get(ctx, "wellness_system_tasks")
	require.NoError(t, err)
	assert.False(t, found)
}
