package repository

import (
	"context"

	"clinic-workflow/internal/domain/entity"
)

type ServicePriceRepository interface {
	FindByTypeAndSubtype(ctx context.Context, serviceType entity.ServiceType, subtype string) (*entity.ServicePrice, error)
	FindAll(ctx context.Context, serviceType *entity.ServiceType) ([]entity.ServicePrice, error)
	Upsert(ctx context.Context, price *entity.ServicePrice) error
}
