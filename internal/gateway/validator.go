// Package gateway implements the edge: a reverse proxy guarded by a
// token-validation filter. The gateway never parses or interprets tokens;
// its only contract with the auth service is the accept/reject boundary of
// the validate endpoint.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/sentinel"
)

// TokenValidator decides whether an Authorization header value authorizes
// a request. Implementations may validate locally or over the network; the
// filter does not care.
type TokenValidator interface {
	// Validate returns nil on accept, a CodeUnauthorized domain error on
	// reject, and a sentinel.ErrUnavailable-wrapped error when the decision
	// could not be made at all.
	Validate(ctx context.Context, authHeader string) error
}

// RemoteValidator validates tokens by calling the auth service's
// GET /validate endpoint with the original header value unmodified.
type RemoteValidator struct {
	baseURL string
	client  *http.Client
}

// NewRemoteValidator builds a validator against the auth service base URL.
func NewRemoteValidator(baseURL string, timeout time.Duration) *RemoteValidator {
	return &RemoteValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *RemoteValidator) Validate(ctx context.Context, authHeader string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/validate", nil)
	if err != nil {
		return fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := v.client.Do(req)
	if err != nil {
		// Cannot reach the validator. This is an outage, not a rejection;
		// conflating the two would lock out legitimate users.
		return fmt.Errorf("call validator: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, "token rejected")
	default:
		return fmt.Errorf("validator returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
}
