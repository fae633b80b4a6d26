package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/events"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

const (
	dashboardKeyPrefix = "dash"
	dashboardPattern   = dashboardKeyPrefix + ":*"
)

// CacheRepository abstracts persistence for cached dashboards.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// DashboardKey names the cached dashboard of role. userID scopes roles whose
// page is personal; shared pages pass "".
func DashboardKey(role models.UserRole, userID string) string {
	if userID == "" {
		return fmt.Sprintf("%s:%s", dashboardKeyPrefix, role)
	}
	return fmt.Sprintf("%s:%s:%s", dashboardKeyPrefix, role, userID)
}

// CacheService keeps rendered dashboards until the store changes. Each
// invalidation starts a new generation and a dashboard built under an older
// generation is never kept.
type CacheService struct {
	repo       CacheRepository
	metrics    cacheMetrics
	ttl        time.Duration
	logger     *zap.Logger
	enabled    bool
	generation atomic.Uint64
}

// NewCacheService constructs a dashboard cache. A nil repo disables it.
func NewCacheService(repo CacheRepository, metrics cacheMetrics, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Generation returns the current invalidation generation. Read it before
// building a value and hand it to Store.
func (s *CacheService) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation.Load()
}

// Lookup decodes the cached dashboard under key into dest and reports a hit.
func (s *CacheService) Lookup(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.record(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Store caches value under key unless the store changed since gen was read.
// It reports whether the value was kept.
func (s *CacheService) Store(ctx context.Context, key string, value interface{}, gen uint64) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	if s.generation.Load() != gen {
		s.logger.Debug("dashboard outdated before caching", zap.String("key", key))
		return false, nil
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	// An invalidation that ran during Set may have missed the new value.
	if s.generation.Load() != gen {
		if err := s.repo.DeleteByPattern(ctx, key); err != nil {
			s.logger.Warn("dashboard cache rollback failed", zap.String("key", key), zap.Error(err))
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Invalidate starts a new generation and drops every cached dashboard.
func (s *CacheService) Invalidate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.generation.Add(1)
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, dashboardPattern); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
		return err
	}
	return nil
}

// InvalidateOn drops cached dashboards whenever a store event arrives on sub.
// The hub only drops an event for sub while older ones are still queued, and
// each of those clears everything. It returns when ctx is done or sub closes.
func (s *CacheService) InvalidateOn(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			if err := s.Invalidate(ctx); err != nil {
				s.logger.Warn("dashboard invalidation failed", zap.String("collection", e.Collection), zap.Error(err))
			}
		}
	}
}

func (s *CacheService) record(hit bool, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, elapsed)
	}
}
