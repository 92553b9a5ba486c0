package repository

import (
	"context"
	"errors"

	"clinic-workflow/internal/domain/entity"
	domainRepo "clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) domainRepo.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	var notification entity.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUserEmail(ctx context.Context, email string, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND read = ?", id, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, email string) ([]entity.Notification, error) {
	var changed []entity.Notification
	err := r.db.WithContext(ctx).Model(&changed).
		Clauses(clause.Returning{}).
		Where("user_email = ? AND read = ?", email, false).
		Update("read", true).Error
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Notification{})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_email = ? AND read = ?", email, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) CountUnreadGrouped(ctx context.Context, limit, offset int) ([]entity.UnreadCount, error) {
	var counts []entity.UnreadCount
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Select("user_email, COUNT(*) AS unread").
		Where("read = ?", false).
		Group("user_email").
		Order("user_email").
		Limit(limit).
		Offset(offset).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
