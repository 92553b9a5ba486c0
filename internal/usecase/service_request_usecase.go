package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/internal/domain/workflow"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/clock"
	"clinic-workflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ServiceRequestUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error)
	GetByID(ctx context.Context, actor entity.Actor, id int64, locale entity.Locale) (*dto.ServiceRequestResponse, error)
	ListMine(ctx context.Context, actor entity.Actor, locale entity.Locale) (*dto.ServiceRequestListResponse, error)
	Confirm(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error)
	ConfirmPayment(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error)
	StartWork(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error)
	Complete(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, id int64, req *dto.CancelServiceRequestRequest) (*dto.ServiceRequestResponse, error)
	RecordPayment(ctx context.Context, actor entity.Actor, id int64, req *dto.RecordPaymentRequest) (*dto.ServiceRequestResponse, error)
}

type serviceRequestUsecase struct {
	log          *logrus.Logger
	validate     *validator.CustomValidator
	clock        clock.Clock
	requestRepo  repository.ServiceRequestRepository
	pricing      service.PricingService
	dispatcher   service.NotificationDispatcher
	auditService service.AuditService
	events       service.EventPublisher
	names        *serviceNameDecorator
}

func NewServiceRequestUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	requestRepo repository.ServiceRequestRepository,
	pricing service.PricingService,
	dispatcher service.NotificationDispatcher,
	auditService service.AuditService,
	events service.EventPublisher,
) ServiceRequestUsecase {
	return &serviceRequestUsecase{
		log:          log,
		validate:     validator.NewValidator(),
		clock:        clk,
		requestRepo:  requestRepo,
		pricing:      pricing,
		dispatcher:   dispatcher,
		auditService: auditService,
		events:       events,
		names:        &serviceNameDecorator{pricing: pricing, log: log},
	}
}

// Create stores a new request. The status is always pending regardless of input.
//
// Flow:
// 1. Validate fields
// 2. Fill price and currency from the catalog when the caller gave none
// 3. Insert the row
// 4. Audit the creation (after commit, never fails the call)
func (u *serviceRequestUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error) {
	const op = "create service request"

	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperror.Validation(op, "validation failed", map[string]string{"price": "price must not be negative"})
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperror.Validation(op, "validation failed", map[string]string{"patient_id": "patient_id must be a valid UUID"})
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperror.Validation(op, "validation failed", map[string]string{"doctor_id": "doctor_id must be a valid UUID"})
	}

	request := &entity.ServiceRequest{
		PatientID:    patientID,
		PatientEmail: strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientName:  strings.TrimSpace(req.PatientName),
		DoctorID:     doctorID,
		DoctorName:   strings.TrimSpace(req.DoctorName),
		ServiceType:  entity.ServiceType(req.ServiceType),
		Currency:     strings.ToUpper(req.Currency),
		Status:       entity.ServiceRequestStatusPending,
		Notes:        req.Notes,
	}
	if req.ServiceSubtype != nil {
		if sub := strings.TrimSpace(*req.ServiceSubtype); sub != "" {
			request.ServiceSubtype = &sub
		}
	}
	if req.Price != nil {
		request.Price = decimal.NewNullDecimal(*req.Price)
	}

	if u.pricing != nil {
		catalog, err := u.pricing.Lookup(ctx, request.ServiceType, request.Subtype())
		if err != nil {
			u.log.Debugf("Failed to look up catalog price for %s: %+v", request.ServiceType, err)
		}
		if catalog != nil {
			if !request.Price.Valid {
				request.Price = decimal.NewNullDecimal(catalog.Price)
				if request.Currency == "" {
					request.Currency = catalog.Currency
				}
			}
			request.ServiceName = catalog.Name
			request.ServiceNameAr = catalog.NameAr
		}
	}
	if request.Currency == "" {
		request.Currency = entity.DefaultCurrency
	}

	if err := u.requestRepo.Create(ctx, request); err != nil {
		u.log.Warnf("Failed to create service request: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	auditCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := u.auditService.LogCreate(auditCtx, actorUserID(actor), entity.AuditActionServiceRequestCreate, serviceRequestsTable, strconv.FormatInt(request.ID, 10), statusSnapshot(request)); err != nil {
		u.log.Warnf("Failed to audit creation of service request %d (non-fatal): %+v", request.ID, err)
	}

	u.log.Infof("Service request created: id=%d, type=%s, patient=%s", request.ID, request.ServiceType, request.PatientEmail)
	return converter.ServiceRequestToResponse(request, entity.LocaleEnglish), nil
}

// GetByID returns one request. Patients may only read their own.
func (u *serviceRequestUsecase) GetByID(ctx context.Context, actor entity.Actor, id int64, locale entity.Locale) (*dto.ServiceRequestResponse, error) {
	const op = "get service request"

	request, err := u.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RolePatient && !ownsRequest(actor, request) {
		// Reported as missing so patients cannot probe other ids.
		return nil, apperror.NotFound(op, fmt.Sprintf("service request %d not found", id))
	}

	u.names.decorateOne(ctx, request)
	return converter.ServiceRequestToResponse(request, locale), nil
}

// ListMine returns the caller's own requests, newest first.
func (u *serviceRequestUsecase) ListMine(ctx context.Context, actor entity.Actor, locale entity.Locale) (*dto.ServiceRequestListResponse, error) {
	const op = "list own service requests"

	if actor.ID == uuid.Nil {
		return nil, apperror.Permission(op, "caller has no user id")
	}
	patientID := actor.ID
	requests, err := u.requestRepo.FindAll(ctx, &entity.ServiceRequestFilter{PatientID: &patientID})
	if err != nil {
		u.log.Warnf("Failed to list service requests for %s: %+v", actor.ID, err)
		return nil, apperror.Dependency(op, err)
	}

	u.names.decorate(ctx, requests)
	return &dto.ServiceRequestListResponse{
		Requests: converter.ServiceRequestsToResponses(requests, locale),
		Total:    len(requests),
	}, nil
}

func (u *serviceRequestUsecase) Confirm(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error) {
	return u.transition(ctx, actor, id, workflow.ActionConfirm, "")
}

func (u *serviceRequestUsecase) ConfirmPayment(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error) {
	return u.transition(ctx, actor, id, workflow.ActionConfirmPayment, "")
}

func (u *serviceRequestUsecase) StartWork(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error) {
	return u.transition(ctx, actor, id, workflow.ActionStartWork, "")
}

func (u *serviceRequestUsecase) Complete(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error) {
	return u.transition(ctx, actor, id, workflow.ActionComplete, "")
}

func (u *serviceRequestUsecase) Cancel(ctx context.Context, actor entity.Actor, id int64, req *dto.CancelServiceRequestRequest) (*dto.ServiceRequestResponse, error) {
	reason := ""
	if req != nil {
		if err := u.validate.Check("cancel service request", req); err != nil {
			return nil, err
		}
		reason = strings.TrimSpace(req.Reason)
	}
	return u.transition(ctx, actor, id, workflow.ActionCancel, reason)
}

// RecordPayment stores the payment status reported by the payment flow.
// It never changes the workflow status; ConfirmPayment does that.
func (u *serviceRequestUsecase) RecordPayment(ctx context.Context, actor entity.Actor, id int64, req *dto.RecordPaymentRequest) (*dto.ServiceRequestResponse, error) {
	const op = "record payment"

	if err := requireFrontDesk(op, actor); err != nil {
		return nil, err
	}
	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}

	request, err := u.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	before := statusSnapshot(request)

	status := entity.PaymentStatus(req.PaymentStatus)
	affected, err := u.requestRepo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		u.log.Warnf("Failed to record payment for service request %d: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if affected == 0 {
		return nil, apperror.NotFound(op, fmt.Sprintf("service request %d not found", id))
	}
	request.PaymentStatus = &status

	auditCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := u.auditService.LogUpdate(auditCtx, actorUserID(actor), entity.AuditActionServiceRequestPayment, serviceRequestsTable, strconv.FormatInt(id, 10), before, statusSnapshot(request)); err != nil {
		u.log.Warnf("Failed to audit payment of service request %d (non-fatal): %+v", id, err)
	}

	u.names.decorateOne(ctx, request)
	return converter.ServiceRequestToResponse(request, entity.LocaleEnglish), nil
}

// transition runs one state machine action.
//
// Flow:
// 1. Load the row
// 2. Decide the transition (permission, then source state)
// 3. Conditional update on (id, status); 0 rows means another writer won
// 4. After commit: audit, status event, notifications
func (u *serviceRequestUsecase) transition(ctx context.Context, actor entity.Actor, id int64, action workflow.Action, reason string) (*dto.ServiceRequestResponse, error) {
	op := fmt.Sprintf("%s service request", action)

	request, err := u.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	decision, err := workflow.Decide(request, action, actor, u.clock.Now().UTC())
	if err != nil {
		return nil, err
	}

	affected, err := u.requestRepo.UpdateStatus(ctx, id, decision.From, &decision.Patch)
	if err != nil {
		u.log.Warnf("Failed to update status of service request %d: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if affected == 0 {
		return nil, apperror.InvalidTransition(op, fmt.Sprintf("request is no longer %q; reload and retry", decision.From))
	}

	before := *request
	decision.Patch.Apply(request)
	u.names.decorateOne(ctx, request)

	u.afterTransition(&before, request, decision, actor, reason)

	u.log.Infof("Service request %d: %s -> %s by %s", id, decision.From, decision.To, actor.Identifier())
	return converter.ServiceRequestToResponse(request, entity.LocaleEnglish), nil
}

// afterTransition runs the side effects of a committed transition. Each gets its
// own background context so a cancelled request cannot drop them.
func (u *serviceRequestUsecase) afterTransition(before, after *entity.ServiceRequest, decision *workflow.Decision, actor entity.Actor, reason string) {
	entityID := strconv.FormatInt(after.ID, 10)

	auditCtx, cancelAudit := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancelAudit()
	newValue := statusSnapshot(after)
	if reason != "" {
		newValue["reason"] = reason
	}
	if err := u.auditService.LogUpdate(auditCtx, actorUserID(actor), decision.AuditAction, serviceRequestsTable, entityID, statusSnapshot(before), newValue); err != nil {
		u.log.Warnf("Failed to audit %s of service request %d (non-fatal): %+v", decision.Action, after.ID, err)
	}

	if u.events != nil {
		eventCtx, cancelEvent := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancelEvent()
		event := entity.StatusChangedEvent{
			RequestID:   after.ID,
			ServiceType: after.ServiceType,
			From:        decision.From,
			To:          decision.To,
			Actor:       actor.Identifier(),
			At:          u.clock.Now().UTC(),
		}
		if err := u.events.PublishStatusChanged(eventCtx, event); err != nil {
			u.log.Warnf("Failed to publish status change of service request %d (non-fatal): %+v", after.ID, err)
		}
	}

	for _, notice := range decision.Notices {
		msg, ok := buildNotice(after, notice, reason)
		if !ok {
			u.log.Warnf("Skipping %s notice for service request %d: no %s recipient", notice.Event, after.ID, notice.Audience)
			continue
		}
		u.dispatcher.Notify(msg)
	}
}

func (u *serviceRequestUsecase) load(ctx context.Context, op string, id int64) (*entity.ServiceRequest, error) {
	request, err := u.requestRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find service request %d: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if request == nil {
		return nil, apperror.NotFound(op, fmt.Sprintf("service request %d not found", id))
	}
	return request, nil
}

func ownsRequest(actor entity.Actor, r *entity.ServiceRequest) bool {
	if actor.ID != uuid.Nil && actor.ID == r.PatientID {
		return true
	}
	return actor.Email != "" && strings.EqualFold(actor.Email, r.PatientEmail)
}

func statusSnapshot(r *entity.ServiceRequest) map[string]interface{} {
	snap := map[string]interface{}{
		"status":       r.Status,
		"service_type": r.ServiceType,
	}
	if r.PaymentStatus != nil {
		snap["payment_status"] = *r.PaymentStatus
	}
	if r.Price.Valid {
		snap["price"] = r.Price.Decimal.String()
	}
	if r.SecretaryConfirmedBy != nil {
		snap["secretary_confirmed_by"] = *r.SecretaryConfirmedBy
	}
	return snap
}
