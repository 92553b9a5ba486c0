package usecase

import (
	"context"
	"fmt"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/pkg/apperror"

	"github.com/sirupsen/logrus"
)

const defaultAuditLogLimit = 200

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, actor entity.Actor, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, actor entity.Actor, limit int) (*dto.AuditLogListResponse, error) {
	const op = "list audit logs"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLogLimit
	}

	logs, err := u.auditLogRepo.FindAll(ctx, limit)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, actor entity.Actor, id int64) (*dto.AuditLogResponse, error) {
	const op = "get audit log"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if auditLog == nil {
		return nil, apperror.NotFound(op, fmt.Sprintf("audit log %d not found", id))
	}

	return converter.AuditLogToResponse(auditLog), nil
}
