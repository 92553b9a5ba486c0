package usecase

import (
	"fmt"
	"strconv"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/workflow"
)

const serviceRequestsTable = "service_requests"

var serviceTypeLabels = map[entity.ServiceType]string{
	entity.ServiceTypeXRay:       "X-ray",
	entity.ServiceTypeUltrasound: "Ultrasound",
	entity.ServiceTypeLab:        "Lab test",
	entity.ServiceTypeAudiometry: "Audiometry",
}

// serviceLabel is the human name used in notification text.
func serviceLabel(r *entity.ServiceRequest) string {
	if r.ServiceName != "" {
		return r.ServiceName
	}
	label, ok := serviceTypeLabels[r.ServiceType]
	if !ok {
		label = string(r.ServiceType)
	}
	if sub := r.Subtype(); sub != "" {
		label = fmt.Sprintf("%s (%s)", label, sub)
	}
	return label
}

func formatPrice(r *entity.ServiceRequest) string {
	if !r.Price.Valid {
		return ""
	}
	amount := r.Price.Decimal.StringFixed(2)
	if r.Currency == "" || r.Currency == entity.DefaultCurrency {
		return "₪" + amount
	}
	return r.Currency + " " + amount
}

// buildNotice renders a state machine notice into a dispatcher message.
// It reports false when the audience has no address (e.g. a request without a patient email).
func buildNotice(r *entity.ServiceRequest, n workflow.Notice, reason string) (entity.NotificationMessage, bool) {
	msg := entity.NotificationMessage{
		RelatedTable: serviceRequestsTable,
		RelatedID:    strconv.FormatInt(r.ID, 10),
	}

	switch n.Audience {
	case workflow.AudiencePatient:
		msg.Target = r.PatientEmail
	case workflow.AudienceDepartment:
		role, ok := r.ServiceType.DepartmentRole()
		if !ok {
			return msg, false
		}
		msg.Target = role
	}
	if msg.Target == "" {
		return msg, false
	}

	label := serviceLabel(r)
	switch n.Event {
	case workflow.NoticePaymentRequired:
		msg.Title = "Payment Required"
		msg.Message = fmt.Sprintf("Your %s request has been reviewed. Please pay %s to continue.", label, formatPrice(r))
		msg.Type = entity.NotificationTypeWarning
	case workflow.NoticeConfirmed:
		msg.Title = "Request Confirmed"
		msg.Message = fmt.Sprintf("Your %s request has been confirmed by the clinic.", label)
		msg.Type = entity.NotificationTypeSuccess
	case workflow.NoticeNewRequest:
		msg.Title = fmt.Sprintf("New %s Request", label)
		msg.Message = fmt.Sprintf("Request #%d for %s is waiting in your queue.", r.ID, patientLabel(r))
		msg.Type = entity.NotificationTypeInfo
	case workflow.NoticePaymentConfirmed:
		msg.Title = "Payment Confirmed"
		msg.Message = fmt.Sprintf("Your payment for %s was received. The department will contact you.", label)
		msg.Type = entity.NotificationTypeSuccess
	case workflow.NoticeReadyForProcessing:
		msg.Title = "Request Ready for Processing"
		msg.Message = fmt.Sprintf("Request #%d for %s is paid and ready.", r.ID, patientLabel(r))
		msg.Type = entity.NotificationTypeInfo
	case workflow.NoticeStarted:
		msg.Title = "Service Started"
		msg.Message = fmt.Sprintf("Your %s is now in progress.", label)
		msg.Type = entity.NotificationTypeInfo
	case workflow.NoticeCompleted:
		msg.Title = "Service Completed"
		msg.Message = fmt.Sprintf("Your %s has been completed.", label)
		msg.Type = entity.NotificationTypeSuccess
	case workflow.NoticeCancelled:
		msg.Title = "Request Cancelled"
		msg.Message = fmt.Sprintf("Your %s request has been cancelled.", label)
		if reason != "" {
			msg.Message += " Reason: " + reason
		}
		msg.Type = entity.NotificationTypeWarning
	default:
		return msg, false
	}
	return msg, true
}

func patientLabel(r *entity.ServiceRequest) string {
	if r.PatientName != "" {
		return r.PatientName
	}
	return r.PatientEmail
}
