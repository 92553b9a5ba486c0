package repository

import (
	"context"

	"clinic-workflow/internal/domain/entity"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindEmailsByRole returns the distinct addresses of active users holding role.
	FindEmailsByRole(ctx context.Context, role string) ([]string, error)
}
