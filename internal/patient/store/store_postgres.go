package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medigate/internal/patient"
	"medigate/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres SQLSTATE for unique index violations.
const uniqueViolation = "23505"

// Postgres persists patients in PostgreSQL. Email uniqueness rests on the
// patients_email_idx unique index; a racing duplicate insert surfaces as
// sentinel.ErrConflict rather than a generic storage error.
type Postgres struct {
	db *sql.DB
}

// NewPostgres builds a Postgres-backed patient store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, p *patient.Patient) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO patients (id, name, email, address, date_of_birth)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Address, p.DateOfBirth,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, p *patient.Patient) error {
	err := s.db.QueryRowContext(ctx,
		`UPDATE patients
		 SET name = $2, email = $3, address = $4, date_of_birth = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Address, p.DateOfBirth,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	// Idempotent: affecting zero rows is fine.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p := &patient.Patient{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, address, date_of_birth, created_at, updated_at
		 FROM patients WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Address, &p.DateOfBirth, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return p, nil
}

func (s *Postgres) List(ctx context.Context) ([]*patient.Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, address, date_of_birth, created_at, updated_at
		 FROM patients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []*patient.Patient
	for rows.Next() {
		p := &patient.Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Address, &p.DateOfBirth, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM patients WHERE lower(email) = lower($1) AND id <> $2
		 )`,
		email, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
