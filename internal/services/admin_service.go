package services

import (
	"context"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/errors"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

// AdminService backs the staff dashboard: application triage, the client
// book and the payment ledger
type AdminService struct {
	applicationRepo ApplicationRepositoryInterface
	clientRepo      ClientRepositoryInterface
	paymentRepo     PaymentRepositoryInterface
}

func NewAdminService(
	applicationRepo ApplicationRepositoryInterface,
	clientRepo ClientRepositoryInterface,
	paymentRepo PaymentRepositoryInterface,
) *AdminService {
	return &AdminService{
		applicationRepo: applicationRepo,
		clientRepo:      clientRepo,
		paymentRepo:     paymentRepo,
	}
}

func (s *AdminService) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errors.InvalidInputError("status", "unknown application status")
	}
	return s.applicationRepo.List(ctx, filter)
}

func (s *AdminService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// UpdateApplicationStatus changes the status and returns the fresh record
func (s *AdminService) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.Application, error) {
	if !status.IsValid() {
		return nil, errors.InvalidInputError("status", "unknown application status")
	}

	if err := s.applicationRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	logger.Info("Application status updated",
		zap.Int64("application_id", id),
		zap.String("status", string(status)))

	return s.applicationRepo.GetByID(ctx, id)
}

func (s *AdminService) ListClients(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	return s.clientRepo.List(ctx, limit, offset)
}

func (s *AdminService) ListPayments(ctx context.Context, limit, offset int) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, limit, offset)
}
