package usecase

import (
	"context"
	"fmt"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/validator"

	"github.com/sirupsen/logrus"
)

// QueueUsecase serves the read-only worklists. Views re-query on every call.
type QueueUsecase interface {
	DepartmentQueue(ctx context.Context, actor entity.Actor, serviceType string, locale entity.Locale) (*dto.ServiceRequestListResponse, error)
	ManagementView(ctx context.Context, actor entity.Actor, query *dto.ManagementQuery, locale entity.Locale) (*dto.ServiceRequestListResponse, error)
}

type queueUsecase struct {
	log         *logrus.Logger
	validate    *validator.CustomValidator
	requestRepo repository.ServiceRequestRepository
	names       *serviceNameDecorator
}

func NewQueueUsecase(
	log *logrus.Logger,
	requestRepo repository.ServiceRequestRepository,
	pricing service.PricingService,
) QueueUsecase {
	return &queueUsecase{
		log:         log,
		validate:    validator.NewValidator(),
		requestRepo: requestRepo,
		names:       &serviceNameDecorator{pricing: pricing, log: log},
	}
}

// DepartmentQueue lists the actionable requests of one department. Pending
// requests never appear here. Readable by that department's staff and the front desk.
func (u *queueUsecase) DepartmentQueue(ctx context.Context, actor entity.Actor, serviceType string, locale entity.Locale) (*dto.ServiceRequestListResponse, error) {
	const op = "list department queue"

	t := entity.ServiceType(serviceType)
	dept, ok := t.DepartmentRole()
	if !ok {
		return nil, apperror.Validation(op, fmt.Sprintf("unknown service type %q", serviceType), map[string]string{"service_type": "service_type must be one of: xray, ultrasound, lab, audiometry"})
	}
	if err := requireRole(op, actor, dept, entity.RoleAdmin, entity.RoleSecretary); err != nil {
		return nil, err
	}

	requests, err := u.requestRepo.FindAll(ctx, entity.DepartmentQueueFilter(t))
	if err != nil {
		u.log.Warnf("Failed to list %s queue: %+v", t, err)
		return nil, apperror.Dependency(op, err)
	}

	u.names.decorate(ctx, requests)
	return &dto.ServiceRequestListResponse{
		Requests: converter.ServiceRequestsToResponses(requests, locale),
		Total:    len(requests),
	}, nil
}

// ManagementView lists requests in every status for the front desk.
func (u *queueUsecase) ManagementView(ctx context.Context, actor entity.Actor, query *dto.ManagementQuery, locale entity.Locale) (*dto.ServiceRequestListResponse, error) {
	const op = "list management view"

	if err := requireFrontDesk(op, actor); err != nil {
		return nil, err
	}

	filter := &entity.ServiceRequestFilter{}
	if query != nil {
		if err := u.validate.Check(op, query); err != nil {
			return nil, err
		}
		if query.ServiceType != "" {
			t := entity.ServiceType(query.ServiceType)
			filter.ServiceType = &t
		}
		for _, s := range query.Statuses {
			filter.StatusIn = append(filter.StatusIn, entity.ServiceRequestStatus(s))
		}
	}

	requests, err := u.requestRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list management view: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	u.names.decorate(ctx, requests)
	return &dto.ServiceRequestListResponse{
		Requests: converter.ServiceRequestsToResponses(requests, locale),
		Total:    len(requests),
	}, nil
}
