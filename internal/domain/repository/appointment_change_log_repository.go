package repository

import (
	"context"

	"clinic-workflow/internal/domain/entity"
)

type AppointmentChangeLogRepository interface {
	Create(ctx context.Context, log *entity.AppointmentChangeLog) error
	FindByID(ctx context.Context, id int64) (*entity.AppointmentChangeLog, error)
	// FindAll returns entries newest first, filtered by kind only.
	FindAll(ctx context.Context, kind *entity.ChangeKind, limit int) ([]entity.AppointmentChangeLog, error)
	MarkAdminNotified(ctx context.Context, id int64) (int64, error)
}
