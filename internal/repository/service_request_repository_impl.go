package repository

import (
	"context"
	"errors"

	"clinic-workflow/internal/domain/entity"
	domainRepo "clinic-workflow/internal/domain/repository"

	"gorm.io/gorm"
)

type serviceRequestRepository struct {
	db *gorm.DB
}

func NewServiceRequestRepository(db *gorm.DB) domainRepo.ServiceRequestRepository {
	return &serviceRequestRepository{db: db}
}

func (r *serviceRequestRepository) Create(ctx context.Context, request *entity.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *serviceRequestRepository) FindByID(ctx context.Context, id int64) (*entity.ServiceRequest, error) {
	var request entity.ServiceRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *serviceRequestRepository) FindAll(ctx context.Context, filter *entity.ServiceRequestFilter) ([]entity.ServiceRequest, error) {
	var requests []entity.ServiceRequest
	query := r.db.WithContext(ctx).Model(&entity.ServiceRequest{})

	if filter != nil {
		if filter.ServiceType != nil {
			query = query.Where("service_type = ?", *filter.ServiceType)
		}
		if len(filter.StatusIn) > 0 {
			query = query.Where("status IN ?", filter.StatusIn)
		}
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateStatus applies a transition atomically ONLY if the row is still in the expected status.
// Returns affected rows: 1 = success, 0 = someone else moved it first (prevents double-confirm race).
func (r *serviceRequestRepository) UpdateStatus(ctx context.Context, id int64, expected entity.ServiceRequestStatus, patch *entity.StatusPatch) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(patch.Columns())
	return result.RowsAffected, result.Error
}

func (r *serviceRequestRepository) UpdatePaymentStatus(ctx context.Context, id int64, status entity.PaymentStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ?", id).
		Update("payment_status", status)
	return result.RowsAffected, result.Error
}
