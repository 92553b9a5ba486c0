package converter

import (
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

func ChangeLogToResponse(log *entity.AppointmentChangeLog) *dto.ChangeLogResponse {
	if log == nil {
		return nil
	}

	return &dto.ChangeLogResponse{
		ID:            log.ID,
		AppointmentID: log.AppointmentID,
		Kind:          string(log.Kind),
		PatientName:   log.PatientName,
		PatientEmail:  log.PatientEmail,
		ChangedBy:     log.ChangedBy,
		Reason:        log.Reason,
		BeforeState:   log.BeforeState,
		AfterState:    log.AfterState,
		AdminNotified: log.AdminNotified,
		CreatedAt:     log.CreatedAt,
	}
}

func ChangeLogsToResponses(logs []entity.AppointmentChangeLog) []dto.ChangeLogResponse {
	responses := make([]dto.ChangeLogResponse, len(logs))
	for i := range logs {
		responses[i] = *ChangeLogToResponse(&logs[i])
	}
	return responses
}
