package repository

import (
	"context"

	"clinic-workflow/internal/domain/entity"
)

type ServiceRequestRepository interface {
	Create(ctx context.Context, request *entity.ServiceRequest) error
	FindByID(ctx context.Context, id int64) (*entity.ServiceRequest, error)
	FindAll(ctx context.Context, filter *entity.ServiceRequestFilter) ([]entity.ServiceRequest, error)
	// UpdateStatus writes patch only if the stored status still equals expected.
	// Returns affected rows: 1 = applied, 0 = status moved on (lost race) or row missing.
	UpdateStatus(ctx context.Context, id int64, expected entity.ServiceRequestStatus, patch *entity.StatusPatch) (int64, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status entity.PaymentStatus) (int64, error)
}
