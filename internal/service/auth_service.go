package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type sessionMarkerStore interface {
	Write(ctx context.Context, sessionID string, markers models.SessionMarkers) error
	Clear(ctx context.Context, sessionID string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	// SimulatedDelay is waited before every credential check.
	SimulatedDelay time.Duration
	BcryptCost     int
}

// AuthService authenticates against the fixed credential table.
type AuthService struct {
	users     []models.User
	sessions  sessionMarkerStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService hashes the credential table and constructs an AuthService.
func NewAuthService(credentials []models.DemoCredential, sessions sessionMarkerStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	users := make([]models.User, 0, len(credentials))
	for _, cred := range credentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), config.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash credential %s: %w", cred.Email, err)
		}
		users = append(users, models.User{
			Email:        cred.Email,
			PasswordHash: string(hash),
			FullName:     cred.FullName,
			Role:         cred.Role,
			UserID:       cred.UserID,
		})
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}, nil
}

// Login checks the credentials, writes the session markers and issues a token
// bound to the new session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "login")
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, ok := s.findByEmail(req.Email)
	if !ok {
		s.logger.Info("login rejected", zap.String("email", req.Email), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("email", req.Email), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Write(ctx, sessionID, models.SessionMarkers{Role: user.Role, Email: user.Email}); err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(user, sessionID, issuedAt)
	if err != nil {
		_ = s.sessions.Clear(ctx, sessionID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("login succeeded", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Redirect:    models.HomeRoute(user.Role),
		IssuedAt:    issuedAt,
		User:        userInfo(user),
	}, nil
}

// Logout clears both markers of the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	return s.sessions.Clear(ctx, sessionID)
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Users lists the credential table without secrets.
func (s *AuthService) Users() []models.UserInfo {
	return lo.Map(s.users, func(u models.User, _ int) models.UserInfo { return userInfo(u) })
}

// Profile resolves the user behind an email marker.
func (s *AuthService) Profile(email string) (models.UserInfo, error) {
	user, ok := s.findByEmail(email)
	if !ok {
		return models.UserInfo{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return userInfo(user), nil
}

func (s *AuthService) findByEmail(email string) (models.User, bool) {
	return lo.Find(s.users, func(u models.User) bool { return u.Email == email })
}

func (s *AuthService) wait(ctx context.Context) error {
	if s.config.SimulatedDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.config.SimulatedDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return appErrors.Wrap(ctx.Err(), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "login cancelled")
	}
}

func (s *AuthService) generateAccessToken(user models.User, sessionID string, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		SessionID: sessionID,
		UserID:    user.UserID,
		Role:      user.Role,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.UserID,
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func userInfo(u models.User) models.UserInfo {
	return models.UserInfo{UserID: u.UserID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
