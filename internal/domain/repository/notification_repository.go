package repository

import (
	"context"

	"clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	FindByUserEmail(ctx context.Context, email string, limit int) ([]entity.Notification, error)
	// MarkRead flips read for an unread row. Returns affected rows: 0 = already read.
	MarkRead(ctx context.Context, id uuid.UUID) (int64, error)
	// MarkAllRead returns the rows that changed.
	MarkAllRead(ctx context.Context, email string) ([]entity.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, email string) (int64, error)
	CountUnreadGrouped(ctx context.Context, limit, offset int) ([]entity.UnreadCount, error)
}
