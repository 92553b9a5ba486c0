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
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/validator"

	"github.com/sirupsen/logrus"
)

const (
	appointmentChangeLogsTable = "appointment_change_logs"
	defaultChangeLogLimit      = 100
)

type ChangeLogUsecase interface {
	Record(ctx context.Context, actor entity.Actor, req *dto.RecordChangeRequest) (*dto.ChangeLogResponse, error)
	List(ctx context.Context, actor entity.Actor, query *dto.ChangeLogQuery) (*dto.ChangeLogListResponse, error)
	Acknowledge(ctx context.Context, actor entity.Actor, id int64) (*dto.ChangeLogResponse, error)
}

type changeLogUsecase struct {
	log        *logrus.Logger
	validate   *validator.CustomValidator
	changeRepo repository.AppointmentChangeLogRepository
	dispatcher service.NotificationDispatcher
}

func NewChangeLogUsecase(
	log *logrus.Logger,
	changeRepo repository.AppointmentChangeLogRepository,
	dispatcher service.NotificationDispatcher,
) ChangeLogUsecase {
	return &changeLogUsecase{
		log:        log,
		validate:   validator.NewValidator(),
		changeRepo: changeRepo,
		dispatcher: dispatcher,
	}
}

// Record appends a change entry and notifies admins. Entries are never edited
// afterwards except for the acknowledgement flag.
func (u *changeLogUsecase) Record(ctx context.Context, actor entity.Actor, req *dto.RecordChangeRequest) (*dto.ChangeLogResponse, error) {
	const op = "record appointment change"

	if err := u.validate.Check(op, req); err != nil {
		return nil, err
	}

	change := &entity.AppointmentChangeLog{
		AppointmentID: req.AppointmentID,
		Kind:          entity.ChangeKind(req.Kind),
		PatientName:   strings.TrimSpace(req.PatientName),
		PatientEmail:  strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		ChangedBy:     actor.Identifier(),
		Reason:        strings.TrimSpace(req.Reason),
		BeforeState:   entity.JSON(req.BeforeState),
		AfterState:    entity.JSON(req.AfterState),
	}

	if err := u.changeRepo.Create(ctx, change); err != nil {
		u.log.Warnf("Failed to record appointment change: %+v", err)
		return nil, apperror.Dependency(op, err)
	}

	u.dispatcher.Notify(changeNotice(change))
	return converter.ChangeLogToResponse(change), nil
}

// List returns entries newest first. Search matches patient name, email or
// reason, case-insensitively, and is applied after the kind-filtered query.
func (u *changeLogUsecase) List(ctx context.Context, actor entity.Actor, query *dto.ChangeLogQuery) (*dto.ChangeLogListResponse, error) {
	const op = "list appointment changes"

	if err := requireFrontDesk(op, actor); err != nil {
		return nil, err
	}

	filter := entity.ChangeLogFilter{Limit: defaultChangeLogLimit}
	if query != nil {
		if err := u.validate.Check(op, query); err != nil {
			return nil, err
		}
		if query.Kind != "" {
			kind := entity.ChangeKind(query.Kind)
			filter.Kind = &kind
		}
		filter.Search = query.Search
		if query.Limit > 0 {
			filter.Limit = query.Limit
		}
	}

	changes, err := u.changeRepo.FindAll(ctx, filter.Kind, filter.Limit)
	if err != nil {
		u.log.Warnf("Failed to list appointment changes: %+v", err)
		return nil, apperror.Dependency(op, err)
	}
	changes = FilterChanges(changes, filter.Search)

	return &dto.ChangeLogListResponse{
		Changes: converter.ChangeLogsToResponses(changes),
		Total:   len(changes),
	}, nil
}

// Acknowledge marks an entry as seen by an admin. Repeating it is harmless.
func (u *changeLogUsecase) Acknowledge(ctx context.Context, actor entity.Actor, id int64) (*dto.ChangeLogResponse, error) {
	const op = "acknowledge appointment change"

	if err := requireRole(op, actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	change, err := u.changeRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment change %d: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if change == nil {
		return nil, apperror.NotFound(op, fmt.Sprintf("appointment change %d not found", id))
	}

	if !change.AdminNotified {
		if _, err := u.changeRepo.MarkAdminNotified(ctx, id); err != nil {
			u.log.Warnf("Failed to acknowledge appointment change %d: %+v", id, err)
			return nil, apperror.Dependency(op, err)
		}
		change.AdminNotified = true
	}
	return converter.ChangeLogToResponse(change), nil
}

// FilterChanges keeps the entries whose patient name, email or reason contains
// search, ignoring case. An empty search keeps everything.
func FilterChanges(changes []entity.AppointmentChangeLog, search string) []entity.AppointmentChangeLog {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return changes
	}
	out := make([]entity.AppointmentChangeLog, 0, len(changes))
	for _, c := range changes {
		if strings.Contains(strings.ToLower(c.PatientName), needle) ||
			strings.Contains(strings.ToLower(c.PatientEmail), needle) ||
			strings.Contains(strings.ToLower(c.Reason), needle) {
			out = append(out, c)
		}
	}
	return out
}

func changeNotice(c *entity.AppointmentChangeLog) entity.NotificationMessage {
	who := c.PatientName
	if who == "" {
		who = c.PatientEmail
	}
	if who == "" {
		who = "A patient"
	}

	msg := entity.NotificationMessage{
		Target:       entity.RoleAdmin,
		Type:         entity.NotificationTypeInfo,
		RelatedTable: appointmentChangeLogsTable,
		RelatedID:    strconv.FormatInt(c.ID, 10),
	}
	switch c.Kind {
	case entity.ChangeKindCancellation:
		msg.Title = "Appointment Cancelled"
		msg.Message = fmt.Sprintf("%s cancelled an appointment.", who)
		msg.Type = entity.NotificationTypeWarning
	default:
		msg.Title = "Appointment Rescheduled"
		msg.Message = fmt.Sprintf("%s rescheduled an appointment.", who)
	}
	if c.Reason != "" {
		msg.Message += " Reason: " + c.Reason
	}
	return msg
}
