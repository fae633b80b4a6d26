package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session marker keys written into the persistence substrate on login.
const (
	MarkerUserRole  = "userRole"
	MarkerUserEmail = "userEmail"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token, the landing route and user info.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	Redirect    string    `json:"redirect"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

// SessionMarkers mirrors the two scalar values stored per session.
type SessionMarkers struct {
	Role  UserRole `json:"userRole"`
	Email string   `json:"userEmail"`
}

// JWTClaims represents the token payload. The role gate trusts the stored
// markers, not the role copied into the token.
type JWTClaims struct {
	SessionID string   `json:"sid"`
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID string
	Email  string
	Role   UserRole
}

// CanAccessStudent reports whether the actor may read records of studentID.
// Students only see their own records.
func (a Actor) CanAccessStudent(studentID string) bool {
	if a.Role == RoleStudent {
		return a.UserID == studentID
	}
	return a.Role.IsValid()
}
