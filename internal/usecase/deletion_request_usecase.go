package usecase

import (
	"context"
	"fmt"
	"strings"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/clock"
	"clinic-workflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const deletionRequestsTable = "deletion_requests"

type DeletionRequestUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateDeletionRequestRequest) (*dto.DeletionRequestResponse, error)
	List(ctx context.Context, actor entity.Actor, status string) (*dto.DeletionRequestListResponse, error)
	Review(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ReviewDeletionRequestRequest) (*dto.DeletionRequestResponse, error)
}

type deletionRequestUsecase struct {
	log          *logrus.Logger
	validate     *validator.CustomValidator
	clock        clock.Clock
	deletionRepo repository.DeletionRequestRepository
	dispatcher   service.NotificationDispatcher
	auditService service.AuditService
}

func NewDeletionRequestUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	deletionRepo repository.DeletionRequestRepository,
	dispatcher service.NotificationDispatcher,
	auditService service.AuditService,
) DeletionRequestUsecase {
	return &deletionRequestUsecase{
		log:          log,
		validate:     validator.NewValidator(),
		clock:        clk,
		deletionRepo: deletionRepo,
		dispatcher:   dispatcher,
		auditService: auditService,
	}
}

// Create files a deletion request for the caller. Only one may be pending per user.
func (u *deletionRequestUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateDeletionRequestRequest) (*dto.DeletionRequestResponse, error) {
	const op = "create deletion request"

	if actor.ID == uuid.Nil {
		return nil, apperror.Permission(op, "caller has no user id")
	}
	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}
	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}

	existing, err := u.deletionRepo.FindPendingByUser(ctx, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to check pending deletion request for %s: %+v", actor.ID, err)
		return nil, apperror.Dependency(op, err)
	}
	if existing != nil {
		return nil, apperror.InvalidTransition(op, "a deletion request is already pending")
	}

	request := &entity.DeletionRequest{
		ID:        uuid.New(),
		UserID:    actor.ID,
		UserEmail: actor.Email,
		Reason:    strings.TrimSpace(req.Reason),
		Status:    entity.DeletionRequestStatusPending,
		CreatedAt: u.clock.Now().UTC(),
	}
	if err := u.deletionRepo.Create(ctx, request); err != nil {
		u.log.Warnf("Failed to create deletion request for %s: %+v", actor.ID, err)
		return nil, apperror.Dependency(op, err)
	}

	u.dispatcher.Notify(entity.NotificationMessage{
		Target:       entity.RoleAdmin,
		Title:        "Account Deletion Requested",
		Message:      fmt.Sprintf("%s asked for their account to be deleted.", actor.Email),
		Type:         entity.NotificationTypeWarning,
		RelatedTable: deletionRequestsTable,
		RelatedID:    request.ID.String(),
	})

	return converter.DeletionRequestToResponse(request), nil
}

func (u *deletionRequestUsecase) List(ctx context.Context, actor entity.Actor, status string) (*dto.DeletionRequestListResponse, error) {
	const op = "list deletion requests"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	var filter *entity.DeletionRequestStatus
	if status != "" {
		s := entity.DeletionRequestStatus(status)
		switch s {
		case entity.DeletionRequestStatusPending, entity.DeletionRequestStatusApproved, entity.DeletionRequestStatusDeclined:
		default:
			return nil, apperror.Validation(op, "validation failed", map[string]string{"status": "status must be one of: pending, approved, declined"})
		}
		filter = &s
	}

	requests, err := u.deletionRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list deletion requests: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	return &dto.DeletionRequestListResponse{
		Requests: converter.DeletionRequestsToResponses(requests),
		Total:    len(requests),
	}, nil
}

// Review approves or declines a pending request.
//
// Flow:
// 1. Load and check the request is still pending
// 2. Conditional update (pending only); 0 rows means another admin got there first
// 3. Notify the requester and write the audit entry
func (u *deletionRequestUsecase) Review(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.ReviewDeletionRequestRequest) (*dto.DeletionRequestResponse, error) {
	const op = "review deletion request"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}

	request, err := u.deletionRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find deletion request %s: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if request == nil {
		return nil, apperror.NotFound(op, "deletion request not found")
	}
	if !request.IsPending() {
		return nil, apperror.InvalidTransition(op, fmt.Sprintf("deletion request is already %s", request.Status))
	}

	decision := entity.DeletionRequestStatus(req.Decision)
	reviewer := actor.Identifier()
	now := u.clock.Now().UTC()

	affected, err := u.deletionRepo.Review(ctx, id, decision, reviewer, now)
	if err != nil {
		u.log.Warnf("Failed to review deletion request %s: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if affected == 0 {
		return nil, apperror.InvalidTransition(op, "deletion request was reviewed concurrently")
	}

	before := request.Status
	request.Status = decision
	request.ReviewedBy = &reviewer
	request.ReviewedAt = &now

	msg := entity.NotificationMessage{
		Target:       request.UserEmail,
		RelatedTable: deletionRequestsTable,
		RelatedID:    request.ID.String(),
	}
	if decision == entity.DeletionRequestStatusApproved {
		msg.Title = "Deletion Request Approved"
		msg.Message = "Your account deletion request was approved."
		msg.Type = entity.NotificationTypeSuccess
	} else {
		msg.Title = "Deletion Request Declined"
		msg.Message = "Your account deletion request was declined. Contact the clinic for details."
		msg.Type = entity.NotificationTypeInfo
	}
	u.dispatcher.Notify(msg)

	auditCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := u.auditService.LogUpdate(auditCtx, actorUserID(actor), entity.AuditActionDeletionRequestReview, deletionRequestsTable, id.String(),
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": decision, "reviewed_by": reviewer},
	); err != nil {
		u.log.Warnf("Failed to audit review of deletion request %s (non-fatal): %+v", id, err)
	}

	return converter.DeletionRequestToResponse(request), nil
}
