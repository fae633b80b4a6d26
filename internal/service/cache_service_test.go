package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
)

// racingCacheRepo runs beforeSet once, just ahead of the next write.
type racingCacheRepo struct {
	*memoryCacheRepo
	beforeSet func()
	getErr    error
}

func (r *racingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if r.getErr != nil {
		return r.getErr
	}
	return r.memoryCacheRepo.Get(ctx, key, dest)
}

func (r *racingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if hook := r.beforeSet; hook != nil {
		r.beforeSet = nil
		hook()
	}
	return r.memoryCacheRepo.Set(ctx, key, value, ttl)
}

type cacheOpRecorder struct {
	mu     sync.Mutex
	hits   int
	misses int
	writes int
}

func (m *cacheOpRecorder) RecordCacheOperation(hit bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *cacheOpRecorder) ObserveCacheWrite(time.Duration) {
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
}

func TestDashboardKey(t *testing.T) {
	assert.Equal(t, "dash:student:EST-1234", DashboardKey(models.RoleStudent, "EST-1234"))
	assert.Equal(t, "dash:admin", DashboardKey(models.RoleAdmin, ""))
}

func TestCacheServiceLookupAndStore(t *testing.T) {
	repo := &racingCacheRepo{memoryCacheRepo: newMemoryCacheRepo()}
	metrics := &cacheOpRecorder{}
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()
	key := DashboardKey(models.RoleTutor, "TUT-001")

	var out map[string]int
	hit, err := cache.Lookup(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	stored, err := cache.Store(ctx, key, map[string]int{"scheduled": 2}, cache.Generation())
	require.NoError(t, err)
	assert.True(t, stored)

	hit, err = cache.Lookup(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, out["scheduled"])
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.writes)

	repo.getErr = errors.New("redis down")
	hit, err = cache.Lookup(ctx, key, &out)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, metrics.misses)
}

func TestCacheServiceSkipsOutdatedValue(t *testing.T) {
	repo := &racingCacheRepo{memoryCacheRepo: newMemoryCacheRepo()}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()
	key := DashboardKey(models.RoleAdmin, "")

	gen := cache.Generation()
	require.NoError(t, cache.Invalidate(ctx))
	stored, err := cache.Store(ctx, key, map[string]int{"students": 8}, gen)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, repo.has(key))
	assert.Equal(t, []string{dashboardPattern}, repo.deletePattern)
}

func TestCacheServiceRollsBackWriteRacingInvalidation(t *testing.T) {
	repo := &racingCacheRepo{memoryCacheRepo: newMemoryCacheRepo()}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()
	key := DashboardKey(models.RolePsychologist, "PSY-001")

	repo.beforeSet = func() { require.NoError(t, cache.Invalidate(ctx)) }
	stored, err := cache.Store(ctx, key, map[string]int{"pending": 1}, cache.Generation())
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, repo.has(key))
	assert.Equal(t, []string{dashboardPattern, key}, repo.deletePattern)
}

func TestCacheServiceDisabled(t *testing.T) {
	ctx := context.Background()
	for _, cache := range []*CacheService{
		nil,
		NewCacheService(nil, nil, 0, nil, true),
		NewCacheService(newMemoryCacheRepo(), nil, 0, nil, false),
	} {
		assert.False(t, cache.Enabled())
		var out map[string]int
		hit, err := cache.Lookup(ctx, "dash:admin", &out)
		require.NoError(t, err)
		assert.False(t, hit)
		stored, err := cache.Store(ctx, "dash:admin", map[string]int{}, cache.Generation())
		require.NoError(t, err)
		assert.False(t, stored)
		require.NoError(t, cache.Invalidate(ctx))
	}
}
