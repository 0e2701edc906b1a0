package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medigate/internal/auth"
	"medigate/pkg/platform/sentinel"
)

// Seed ensures a development user exists. Already-present usernames are
// left untouched so restarts are idempotent.
func Seed(ctx context.Context, store Store, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	err = store.Create(ctx, &auth.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         "ADMIN",
	})
	if errors.Is(err, sentinel.ErrConflict) {
		return nil
	}
	return err
}
