package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"medigate/internal/patient"
	"medigate/internal/patient/billing"
	"medigate/internal/patient/events"
)

// Store is the durable patient store the orchestrator writes through.
type Store interface {
	Create(ctx context.Context, p *patient.Patient) error
	Update(ctx context.Context, p *patient.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	List(ctx context.Context) ([]*patient.Patient, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

// BillingClient registers billing accounts for new patients.
type BillingClient interface {
	CreateBillingAccount(ctx context.Context, patientID, name, email string) (*billing.AccountRef, error)
}

// EventPublisher emits patient lifecycle events, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event events.PatientEvent)
}
