package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenMalformed = errors.New("storage: malformed download token")
	ErrTokenSignature = errors.New("storage: invalid download token signature")
	ErrTokenExpired   = errors.New("storage: download token expired")
)

// Grant is the content of a verified download token.
type Grant struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues HMAC-signed download tokens of the form
// jobID.expiry.base64(path).signature.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer; ttl defaults to one day.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token granting access to path for the job.
func (s *SignedURLSigner) Sign(jobID, path string) (string, time.Time, error) {
	if jobID == "" || path == "" {
		return "", time.Time{}, fmt.Errorf("jobID and path required")
	}
	if strings.Contains(jobID, ".") {
		return "", time.Time{}, fmt.Errorf("jobID must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	enc := base64.RawURLEncoding.EncodeToString([]byte(path))
	return strings.Join([]string{jobID, exp, enc, s.mac(jobID, exp, enc)}, "."), expiresAt, nil
}

// Verify checks the token signature and expiry.
func (s *SignedURLSigner) Verify(token string) (Grant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Grant{}, ErrTokenMalformed
	}
	jobID, exp, enc, sig := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(jobID, exp, enc)), []byte(sig)) {
		return Grant{}, ErrTokenSignature
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	path, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	g := Grant{JobID: jobID, Path: string(path), ExpiresAt: time.Unix(unix, 0)}
	if s.now().After(g.ExpiresAt) {
		return g, ErrTokenExpired
	}
	return g, nil
}

func (s *SignedURLSigner) mac(parts ...string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(m.Sum(nil))
}
