package repository

import (
	"context"
	"errors"

	"clinic-workflow/internal/domain/entity"
	domainRepo "clinic-workflow/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type servicePriceRepository struct {
	db *gorm.DB
}

func NewServicePriceRepository(db *gorm.DB) domainRepo.ServicePriceRepository {
	return &servicePriceRepository{db: db}
}

// FindByTypeAndSubtype treats a NULL and an empty subtype as the same catalog key.
func (r *servicePriceRepository) FindByTypeAndSubtype(ctx context.Context, serviceType entity.ServiceType, subtype string) (*entity.ServicePrice, error) {
	var price entity.ServicePrice
	err := r.db.WithContext(ctx).
		Where("service_type = ? AND COALESCE(service_subtype, '') = ?", serviceType, subtype).
		First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (r *servicePriceRepository) FindAll(ctx context.Context, serviceType *entity.ServiceType) ([]entity.ServicePrice, error) {
	var prices []entity.ServicePrice
	query := r.db.WithContext(ctx)
	if serviceType != nil {
		query = query.Where("service_type = ?", *serviceType)
	}
	if err := query.Order("service_type ASC, service_subtype ASC").Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// Upsert relies on the unique index over (service_type, COALESCE(service_subtype, '')).
func (r *servicePriceRepository) Upsert(ctx context.Context, price *entity.ServicePrice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_type"}, {Name: "(COALESCE(service_subtype, ''))", Raw: true}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "name_ar", "price", "currency", "updated_at"}),
	}).Create(price).Error
}
