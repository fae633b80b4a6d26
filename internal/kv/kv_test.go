package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, found, err := m.Get(ctx, "wellness_system_tasks")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "wellness_system_tasks", "[]"))
	require.NoError(t, m.Set(ctx, "wellness_system_messages", "[]"))
	require.NoError(t, m.Set(ctx, "userRole", "student"))

	v, found, err := m.Get(ctx, "wellness_system_tasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)

	keys, err := m.Keys(ctx, "wellness_system_")
	require.NoError(t, err)
	assert.Equal(t, []string{"wellness_system_messages", "wellness_system_tasks"}, keys)

	require.NoError(t, m.Delete(ctx, "wellness_system_tasks"))
	_, found, _ = m.Get(ctx, "wellness_system_tasks")
	assert.False(t, found)
}

func TestPrefixedScopesKeys(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Prefixed(base, "session:a:")
	b := Prefixed(base, "session:b:")

	require.NoError(t, a.Set(ctx, "userRole", "tutor"))
	require.NoError(t, b.Set(ctx, "userRole", "admin"))

	v, found, err := a.Get(ctx, "userRole")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tutor", v)

	raw, _, _ := base.Get(ctx, "session:b:userRole")
	assert.Equal(t, "admin", raw)

	keys, err := a.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"userRole"}, keys)

	require.NoError(t, a.Delete(ctx, "userRole"))
	_, found, _ = a.Get(ctx, "userRole")
	assert.False(t, found)
	_, found, _ = b.Get(ctx, "userRole")
	assert.True(t, found)
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	var u Unavailable

	_, found, err := u.Get(ctx, "wellness_system_tasks")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, u.Set(ctx, "k", "v"), ErrUnavailable)
	assert.ErrorIs(t, u.Delete(ctx, "k"), ErrUnavailable)
	keys, err := u.Keys(ctx, "")
	assert.NoError(t, err)
	assert.Empty(t, keys)
}
