package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/models"
)

// MarkerService stores the two per-session markers, userRole and userEmail,
// on the same substrate as the collections.
type MarkerService struct {
	store  kv.KV
	prefix string
	logger *zap.Logger
}

// NewMarkerService constructs a MarkerService. Every session gets its own
// key namespace below prefix.
func NewMarkerService(store kv.KV, prefix string, logger *zap.Logger) *MarkerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "session:"
	}
	return &MarkerService{store: store, prefix: prefix, logger: logger}
}

func (s *MarkerService) scope(sessionID string) kv.KV {
	return kv.Prefixed(s.store, s.prefix+sessionID+":")
}

// Write stores both markers for sessionID.
func (s *MarkerService) Write(ctx context.Context, sessionID string, markers models.SessionMarkers) error {
	scoped := s.scope(sessionID)
	if err := scoped.Set(ctx, models.MarkerUserRole, string(markers.Role)); err != nil {
		return storeError(err, "write session role")
	}
	if err := scoped.Set(ctx, models.MarkerUserEmail, markers.Email); err != nil {
		return storeError(err, "write session email")
	}
	return nil
}

// Read returns the markers of sessionID. found is false when the role marker
// is absent.
func (s *MarkerService) Read(ctx context.Context, sessionID string) (models.SessionMarkers, bool, error) {
	if sessionID == "" {
		return models.SessionMarkers{}, false, nil
	}
	scoped := s.scope(sessionID)
	role, ok, err := scoped.Get(ctx, models.MarkerUserRole)
	if err != nil {
		return models.SessionMarkers{}, false, storeError(err, "read session role")
	}
	if !ok {
		return models.SessionMarkers{}, false, nil
	}
	email, _, err := scoped.Get(ctx, models.MarkerUserEmail)
	if err != nil {
		return models.SessionMarkers{}, false, storeError(err, "read session email")
	}
	return models.SessionMarkers{Role: models.UserRole(role), Email: email}, true, nil
}

// Clear removes both markers. Missing markers are not an error.
func (s *MarkerService) Clear(ctx context.Context, sessionID string) error {
	scoped := s.scope(sessionID)
	for _, key := range []string{models.MarkerUserRole, models.MarkerUserEmail} {
		if err := scoped.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to clear session marker", zap.String("session_id", sessionID), zap.String("marker", key), zap.Error(err))
			return storeError(err, "clear session")
		}
	}
	return nil
}
