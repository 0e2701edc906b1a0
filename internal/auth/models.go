// Package auth holds the identity model and request/response shapes for
// the auth service.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a principal that can authenticate against the platform.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// LoginRequest is the POST /login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
