// Package token issues and verifies the opaque bearer tokens handed out at
// login. Tokens are HS256 JWTs; nothing outside this package inspects their
// structure.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "medigate/pkg/domain-errors"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles token creation and verification.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewService builds a token service with a fixed TTL.
func NewService(signingKey, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// errInvalid is the single outcome for every verification failure. Expired,
// malformed and tampered tokens are indistinguishable to callers so the
// reason for rejection never leaks.
var errInvalid = dErrors.New(dErrors.CodeUnauthorized, "invalid token")

// Issue creates a signed token for the given principal, expiring at
// now + TTL.
func (s *Service) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := t.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify accepts a token iff it is well-formed, unexpired and its HMAC
// checks out.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, errInvalid
	}
	if !parsed.Valid {
		return nil, errInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, errInvalid
	}
	return claims, nil
}
