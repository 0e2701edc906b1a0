// Package patient holds the patient entity and its request/response
// shapes. Date of birth is date-only; times are stored in UTC.
package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "medigate/pkg/domain-errors"
)

// DateFormat is the wire format for dates of birth.
const DateFormat = "2006-01-02"

// Patient is the durable patient record. ID is assigned on creation and
// never changes; Email is unique across all patients.
type Patient struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Address     string
	DateOfBirth time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Request is the create/update payload.
type Request struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
}

// Validate checks the payload and parses the date of birth.
func (r Request) Validate() (time.Time, error) {
	if strings.TrimSpace(r.Name) == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "valid email is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "address is required")
	}
	dob, err := time.Parse(DateFormat, r.DateOfBirth)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "dateOfBirth must be YYYY-MM-DD")
	}
	return dob, nil
}

// Response is the JSON view of a patient.
type Response struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
}

// ToResponse maps a stored patient to its JSON view.
func ToResponse(p *Patient) Response {
	return Response{
		ID:          p.ID.String(),
		Name:        p.Name,
		Email:       p.Email,
		Address:     p.Address,
		DateOfBirth: p.DateOfBirth.Format(DateFormat),
	}
}
