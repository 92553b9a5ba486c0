package repository

import (
	"context"
	"time"

	"clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

type DeletionRequestRepository interface {
	Create(ctx context.Context, request *entity.DeletionRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DeletionRequest, error)
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*entity.DeletionRequest, error)
	FindAll(ctx context.Context, status *entity.DeletionRequestStatus) ([]entity.DeletionRequest, error)
	// Review moves a pending request to status. Returns affected rows: 0 = already reviewed.
	Review(ctx context.Context, id uuid.UUID, status entity.DeletionRequestStatus, reviewer string, at time.Time) (int64, error)
}
