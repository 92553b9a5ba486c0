package usecase

import (
	"context"
	"strings"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/validator"

	"github.com/sirupsen/logrus"
)

type ServicePriceUsecase interface {
	List(ctx context.Context, serviceType string) (*dto.ServicePriceListResponse, error)
	Upsert(ctx context.Context, actor entity.Actor, req *dto.UpsertServicePriceRequest) (*dto.ServicePriceResponse, error)
}

type servicePriceUsecase struct {
	log          *logrus.Logger
	validate     *validator.CustomValidator
	priceRepo    repository.ServicePriceRepository
	pricing      service.PricingService
	auditService service.AuditService
}

func NewServicePriceUsecase(
	log *logrus.Logger,
	priceRepo repository.ServicePriceRepository,
	pricing service.PricingService,
	auditService service.AuditService,
) ServicePriceUsecase {
	return &servicePriceUsecase{
		log:          log,
		validate:     validator.NewValidator(),
		priceRepo:    priceRepo,
		pricing:      pricing,
		auditService: auditService,
	}
}

func (u *servicePriceUsecase) List(ctx context.Context, serviceType string) (*dto.ServicePriceListResponse, error) {
	const op = "list service prices"

	var filter *entity.ServiceType
	if serviceType != "" {
		t := entity.ServiceType(serviceType)
		if !t.Valid() {
			return nil, apperror.Validation(op, "validation failed", map[string]string{"service_type": "service_type must be one of: xray, ultrasound, lab, audiometry"})
		}
		filter = &t
	}

	prices, err := u.priceRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list service prices: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	return &dto.ServicePriceListResponse{
		Prices: converter.ServicePricesToResponses(prices),
		Total:  len(prices),
	}, nil
}

// Upsert writes one catalog entry and drops its cached copy.
func (u *servicePriceUsecase) Upsert(ctx context.Context, actor entity.Actor, req *dto.UpsertServicePriceRequest) (*dto.ServicePriceResponse, error) {
	const op = "upsert service price"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation(op, "validation failed", map[string]string{"price": "price must not be negative"})
	}

	price := &entity.ServicePrice{
		ServiceType: entity.ServiceType(req.ServiceType),
		Name:        strings.TrimSpace(req.Name),
		NameAr:      strings.TrimSpace(req.NameAr),
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
	}
	subtype := ""
	if req.ServiceSubtype != nil {
		subtype = strings.TrimSpace(*req.ServiceSubtype)
	}
	if subtype != "" {
		price.ServiceSubtype = &subtype
	}
	if price.Currency == "" {
		price.Currency = entity.DefaultCurrency
	}

	previous, err := u.priceRepo.FindByTypeAndSubtype(ctx, price.ServiceType, subtype)
	if err != nil {
		u.log.Warnf("Failed to find service price %s/%s: %+v", price.ServiceType, subtype, err)
		return nil, apperror.Dependency(op, err)
	}

	if err := u.priceRepo.Upsert(ctx, price); err != nil {
		u.log.Warnf("Failed to upsert service price %s/%s: %+v", price.ServiceType, subtype, err)
		return nil, apperror.Dependency(op, err)
	}

	if u.pricing != nil {
		u.pricing.Invalidate(ctx, price.ServiceType, subtype)
	}

	auditCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	var oldValue interface{}
	if previous != nil {
		oldValue = priceSnapshot(previous)
	}
	if err := u.auditService.LogUpdate(auditCtx, actorUserID(actor), entity.AuditActionServicePriceUpsert, "service_prices", price.ID.String(), oldValue, priceSnapshot(price)); err != nil {
		u.log.Warnf("Failed to audit service price upsert (non-fatal): %+v", err)
	}

	return converter.ServicePriceToResponse(price), nil
}

func priceSnapshot(p *entity.ServicePrice) map[string]interface{} {
	return map[string]interface{}{
		"service_type":    p.ServiceType,
		"service_subtype": p.ServiceSubtype,
		"name":            p.Name,
		"price":           p.Price.String(),
		"currency":        p.Currency,
	}
}
