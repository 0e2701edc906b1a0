// Package service implements patient onboarding: a durable write, a
// synchronous billing call and an asynchronous event publish combined into
// one user-facing operation with an explicit partial-failure policy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"medigate/internal/patient"
	"medigate/internal/patient/events"
	"medigate/internal/platform/config"
	"medigate/internal/platform/metrics"
	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/sentinel"
)

var tracer = otel.Tracer("medigate/patient")

// Service orchestrates patient lifecycle operations.
type Service struct {
	store         Store
	billing       BillingClient
	publisher     EventPublisher
	billingPolicy config.BillingPolicy
	logger        *slog.Logger
	metrics       *metrics.PatientMetrics
}

// New builds the patient service. metrics may be nil.
func New(store Store, billing BillingClient, publisher EventPublisher, policy config.BillingPolicy, logger *slog.Logger, m *metrics.PatientMetrics) *Service {
	return &Service{
		store:         store,
		billing:       billing,
		publisher:     publisher,
		billingPolicy: policy,
		logger:        logger,
		metrics:       m,
	}
}

// Create onboards a patient.
//
// The store insert is the durability boundary: once it commits, the
// patient exists no matter what the billing or event steps do. Those side
// effects run on a context detached from the caller so a client
// disconnect cannot abandon them mid-flight, but they still carry their
// own timeouts.
func (s *Service) Create(ctx context.Context, req patient.Request) (*patient.Patient, error) {
	ctx, span := tracer.Start(ctx, "patient.Create")
	defer span.End()
	start := time.Now()

	dob, err := req.Validate()
	if err != nil {
		return nil, err
	}

	// Fast-path uniqueness check before the insert, so a duplicate email
	// fails with a clean conflict and no identifier is burned. The store
	// insert re-enforces uniqueness atomically, closing the narrow race
	// between this check and the write.
	taken, err := s.store.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, s.storeError(ctx, "email uniqueness check failed", err)
	}
	if taken {
		return nil, dErrors.New(dErrors.CodeConflict, "a patient with this email already exists")
	}

	p := &patient.Patient{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: dob,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a patient with this email already exists")
		}
		return nil, s.storeError(ctx, "patient insert failed", err)
	}
	span.SetAttributes(attribute.String("patient.id", p.ID.String()))

	// Side effects run detached from the caller's cancellation.
	sideCtx := context.WithoutCancel(ctx)

	if err := s.provisionBilling(sideCtx, p); err != nil {
		// Only the compensate policy surfaces this; the record is gone.
		return nil, err
	}

	s.publisher.Publish(sideCtx, events.PatientEvent{
		PatientID: p.ID.String(),
		Name:      p.Name,
		Email:     p.Email,
		EventType: events.EventTypePatientCreated,
	})

	if s.metrics != nil {
		s.metrics.PatientsCreated.Inc()
		s.metrics.OnboardingLatency.Observe(time.Since(start).Seconds())
	}
	return p, nil
}

// provisionBilling applies the configured partial-failure policy around
// the billing call.
func (s *Service) provisionBilling(ctx context.Context, p *patient.Patient) error {
	ctx, span := tracer.Start(ctx, "patient.provisionBilling", trace.WithAttributes(
		attribute.String("billing.policy", string(s.billingPolicy)),
	))
	defer span.End()

	ref, err := s.billing.CreateBillingAccount(ctx, p.ID.String(), p.Name, p.Email)
	if err == nil {
		s.logger.InfoContext(ctx, "billing account created",
			"patient_id", p.ID,
			"account_id", ref.AccountID,
			"status", ref.Status,
		)
		return nil
	}

	if s.metrics != nil {
		s.metrics.BillingFailures.Inc()
	}

	if s.billingPolicy == config.BillingCompensate {
		s.logger.ErrorContext(ctx, "billing unavailable, compensating patient insert",
			"patient_id", p.ID,
			"error", err,
		)
		if delErr := s.store.Delete(ctx, p.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "compensating delete failed",
				"patient_id", p.ID,
				"error", delErr,
			)
		}
		return dErrors.New(dErrors.CodeUnavailable, "billing account provisioning failed")
	}

	// Best-effort policy: the patient stays committed; billing catches up
	// out of band.
	s.logger.ErrorContext(ctx, "billing unavailable, keeping patient",
		"patient_id", p.ID,
		"error", err,
	)
	return nil
}

// Update applies field changes to an existing patient. No billing or
// event side effects here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req patient.Request) (*patient.Patient, error) {
	dob, err := req.Validate()
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "patient not found")
		}
		return nil, s.storeError(ctx, "patient lookup failed", err)
	}

	taken, err := s.store.EmailTaken(ctx, req.Email, id)
	if err != nil {
		return nil, s.storeError(ctx, "email uniqueness check failed", err)
	}
	if taken {
		return nil, dErrors.New(dErrors.CodeConflict, "a patient with this email already exists")
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Address = req.Address
	existing.DateOfBirth = dob

	if err := s.store.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "patient not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "a patient with this email already exists")
		default:
			return nil, s.storeError(ctx, "patient update failed", err)
		}
	}
	return existing, nil
}

// Delete removes a patient. Idempotent: an absent id is success.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(ctx, "patient delete failed", err)
	}
	return nil
}

// Get fetches one patient.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "patient not found")
		}
		return nil, s.storeError(ctx, "patient lookup failed", err)
	}
	return p, nil
}

// List returns all patients.
func (s *Service) List(ctx context.Context) ([]*patient.Patient, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "patient list failed", err)
	}
	return all, nil
}

func (s *Service) storeError(ctx context.Context, msg string, err error) error {
	s.logger.ErrorContext(ctx, msg, "error", err)
	return dErrors.New(dErrors.CodeInternal, msg)
}
