// Package store persists patient records. Both implementations enforce
// email uniqueness atomically inside Create and Update, so the service's
// pre-check is a fast path, not the correctness mechanism.
package store

import (
	"context"

	"github.com/google/uuid"

	"medigate/internal/patient"
)

// Store is the durable patient store.
type Store interface {
	// Create inserts a patient; returns sentinel.ErrConflict when the email
	// is already taken.
	Create(ctx context.Context, p *patient.Patient) error
	// Update overwrites an existing record; sentinel.ErrNotFound when the
	// id is unknown, sentinel.ErrConflict when the new email collides.
	Update(ctx context.Context, p *patient.Patient) error
	// Delete removes a record; deleting an absent id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID returns sentinel.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	// List returns all patients ordered by creation time.
	List(ctx context.Context) ([]*patient.Patient, error)
	// EmailTaken reports whether another patient (excluding excludeID, which
	// may be uuid.Nil) already uses the email.
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}
