package repository

import (
	"context"
	"errors"

	"clinic-workflow/internal/domain/entity"
	domainRepo "clinic-workflow/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentChangeLogRepository struct {
	db *gorm.DB
}

func NewAppointmentChangeLogRepository(db *gorm.DB) domainRepo.AppointmentChangeLogRepository {
	return &appointmentChangeLogRepository{db: db}
}

func (r *appointmentChangeLogRepository) Create(ctx context.Context, log *entity.AppointmentChangeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *appointmentChangeLogRepository) FindByID(ctx context.Context, id int64) (*entity.AppointmentChangeLog, error) {
	var log entity.AppointmentChangeLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *appointmentChangeLogRepository) FindAll(ctx context.Context, kind *entity.ChangeKind, limit int) ([]entity.AppointmentChangeLog, error) {
	var logs []entity.AppointmentChangeLog
	query := r.db.WithContext(ctx)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *appointmentChangeLogRepository) MarkAdminNotified(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.AppointmentChangeLog{}).
		Where("id = ?", id).
		Update("admin_notified", true)
	return result.RowsAffected, result.Error
}
