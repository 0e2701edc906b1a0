// Package billing is the gRPC adapter for the billing service. It
// translates between the domain and the wire contract so the orchestrator
// never sees protobuf types.
package billing

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	billingpb "medigate/api/proto/billing"
	"medigate/pkg/platform/sentinel"
)

// AccountRef is the observed result of a remote billing-account creation.
// The account itself is remote-owned and never stored locally.
type AccountRef struct {
	AccountID string
	Status    string
}

// Client wraps the generated gRPC client with a per-call timeout.
type Client struct {
	client  billingpb.BillingServiceClient
	timeout time.Duration
}

// NewClient dials the billing service. The connection is lazy; failures
// surface on the first call.
func NewClient(addr string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to billing service: %w", err)
	}

	return &Client{
		client:  billingpb.NewBillingServiceClient(conn),
		timeout: timeout,
	}, nil
}

// CreateBillingAccount registers a billing account for a patient. Any
// transport or remote failure wraps sentinel.ErrUnavailable; the
// orchestrator decides the policy, this client has no retry of its own.
func (c *Client) CreateBillingAccount(ctx context.Context, patientID, name, email string) (*AccountRef, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateBillingAccount(ctx, &billingpb.BillingRequest{
		PatientId: patientID,
		Name:      name,
		Email:     email,
	})
	if err != nil {
		return nil, fmt.Errorf("create billing account: %w: %w", sentinel.ErrUnavailable, err)
	}

	return &AccountRef{
		AccountID: resp.GetAccountId(),
		Status:    resp.GetStatus(),
	}, nil
}
