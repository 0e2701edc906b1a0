// Package grpc implements the billing account service.
package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "medigate/api/proto/billing"
)

// Server creates billing accounts for newly onboarded patients. Account
// state is owned by the downstream ledger; this service only hands out
// identifiers and an initial status.
type Server struct {
	pb.UnimplementedBillingServiceServer

	logger *slog.Logger
}

// NewServer creates a billing Server.
func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

// CreateBillingAccount provisions a billing account for a patient.
func (s *Server) CreateBillingAccount(ctx context.Context, req *pb.BillingRequest) (*pb.BillingResponse, error) {
	if req.GetPatientId() == "" {
		return nil, status.Error(codes.InvalidArgument, "patient_id is required")
	}
	if _, err := uuid.Parse(req.GetPatientId()); err != nil {
		return nil, status.Error(codes.InvalidArgument, "patient_id must be a uuid")
	}

	accountID := uuid.NewString()
	s.logger.InfoContext(ctx, "billing account created",
		"patient_id", req.GetPatientId(),
		"name", req.GetName(),
		"email", req.GetEmail(),
		"account_id", accountID,
	)

	return &pb.BillingResponse{
		AccountId: accountID,
		Status:    "ACTIVE",
	}, nil
}
