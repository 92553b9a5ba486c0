package repository

import (
	"context"
	"errors"
	"time"

	"clinic-workflow/internal/domain/entity"
	domainRepo "clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type deletionRequestRepository struct {
	db *gorm.DB
}

func NewDeletionRequestRepository(db *gorm.DB) domainRepo.DeletionRequestRepository {
	return &deletionRequestRepository{db: db}
}

func (r *deletionRequestRepository) Create(ctx context.Context, request *entity.DeletionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *deletionRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DeletionRequest, error) {
	var request entity.DeletionRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *deletionRequestRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*entity.DeletionRequest, error) {
	var request entity.DeletionRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.DeletionRequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *deletionRequestRepository) FindAll(ctx context.Context, status *entity.DeletionRequestStatus) ([]entity.DeletionRequest, error) {
	var requests []entity.DeletionRequest
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Review atomically closes a request ONLY while it is still pending.
func (r *deletionRequestRepository) Review(ctx context.Context, id uuid.UUID, status entity.DeletionRequestStatus, reviewer string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.DeletionRequest{}).
		Where("id = ? AND status = ?", id, entity.DeletionRequestStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	return result.RowsAffected, result.Error
}
