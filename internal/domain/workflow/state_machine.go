// Package workflow holds the service request state machine. Decide is a pure
// function of the current row, the requested action, the actor and the clock;
// applying the decision is the caller's job.
package workflow

import (
	"fmt"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/pkg/apperror"
)

// Action is an operation that moves a request along the graph.
type Action string

const (
	ActionConfirm        Action = "confirm"
	ActionConfirmPayment Action = "confirm_payment"
	ActionStartWork      Action = "start_work"
	ActionComplete       Action = "complete"
	ActionCancel         Action = "cancel"
)

var AllActions = []Action{
	ActionConfirm,
	ActionConfirmPayment,
	ActionStartWork,
	ActionComplete,
	ActionCancel,
}

// Audience is who a notice is addressed to.
type Audience string

const (
	AudiencePatient    Audience = "patient"
	AudienceDepartment Audience = "department"
)

// NoticeEvent identifies the message template of a notice.
type NoticeEvent string

const (
	NoticePaymentRequired    NoticeEvent = "payment_required"
	NoticeConfirmed          NoticeEvent = "confirmed"
	NoticeNewRequest         NoticeEvent = "new_request"
	NoticePaymentConfirmed   NoticeEvent = "payment_confirmed"
	NoticeReadyForProcessing NoticeEvent = "ready_for_processing"
	NoticeStarted            NoticeEvent = "started"
	NoticeCompleted          NoticeEvent = "completed"
	NoticeCancelled          NoticeEvent = "cancelled"
)

// Notice is a notification the caller must send once the transition is committed.
type Notice struct {
	Audience Audience
	Event    NoticeEvent
}

// Decision is the outcome of a valid transition.
type Decision struct {
	Action      Action
	From        entity.ServiceRequestStatus
	To          entity.ServiceRequestStatus
	Patch       entity.StatusPatch
	Notices     []Notice
	AuditAction string
}

// edges is the transition graph. Cancelled is reachable from every non-terminal state.
var edges = map[entity.ServiceRequestStatus][]entity.ServiceRequestStatus{
	entity.ServiceRequestStatusPending: {
		entity.ServiceRequestStatusPaymentRequired,
		entity.ServiceRequestStatusSecretaryConfirmed,
		entity.ServiceRequestStatusCancelled,
	},
	entity.ServiceRequestStatusPaymentRequired: {
		entity.ServiceRequestStatusSecretaryConfirmed,
		entity.ServiceRequestStatusInProgress,
		entity.ServiceRequestStatusCancelled,
	},
	entity.ServiceRequestStatusSecretaryConfirmed: {
		entity.ServiceRequestStatusInProgress,
		entity.ServiceRequestStatusCancelled,
	},
	entity.ServiceRequestStatusInProgress: {
		entity.ServiceRequestStatusCompleted,
		entity.ServiceRequestStatusCancelled,
	},
}

// Allowed reports whether from -> to is an edge of the graph.
func Allowed(from, to entity.ServiceRequestStatus) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Decide validates action against req and returns the transition to apply.
func Decide(req *entity.ServiceRequest, action Action, actor entity.Actor, now time.Time) (*Decision, error) {
	op := opName(action)

	if err := authorize(req, action, actor); err != nil {
		return nil, err
	}

	from := req.Status
	d := &Decision{Action: action, From: from}

	switch action {
	case ActionConfirm:
		if from != entity.ServiceRequestStatusPending {
			return nil, invalid(op, from)
		}
		confirmedBy := actor.Identifier()
		d.Patch.SecretaryConfirmedAt = &now
		d.Patch.SecretaryConfirmedBy = &confirmedBy
		d.AuditAction = entity.AuditActionServiceRequestConfirm
		if req.RequiresPayment() {
			d.To = entity.ServiceRequestStatusPaymentRequired
			d.Notices = []Notice{{Audience: AudiencePatient, Event: NoticePaymentRequired}}
		} else {
			d.To = entity.ServiceRequestStatusSecretaryConfirmed
			d.Notices = []Notice{
				{Audience: AudiencePatient, Event: NoticeConfirmed},
				{Audience: AudienceDepartment, Event: NoticeNewRequest},
			}
		}

	case ActionConfirmPayment:
		if from != entity.ServiceRequestStatusPaymentRequired {
			return nil, invalid(op, from)
		}
		if !req.IsPaid() {
			return nil, apperror.InvalidTransition(op, "payment has not been received")
		}
		d.To = entity.ServiceRequestStatusSecretaryConfirmed
		d.AuditAction = entity.AuditActionServiceRequestConfirmPayment
		d.Notices = []Notice{
			{Audience: AudiencePatient, Event: NoticePaymentConfirmed},
			{Audience: AudienceDepartment, Event: NoticeReadyForProcessing},
		}

	case ActionStartWork:
		if from != entity.ServiceRequestStatusSecretaryConfirmed && from != entity.ServiceRequestStatusPaymentRequired {
			return nil, invalid(op, from)
		}
		d.To = entity.ServiceRequestStatusInProgress
		d.AuditAction = entity.AuditActionServiceRequestStart
		d.Notices = []Notice{{Audience: AudiencePatient, Event: NoticeStarted}}

	case ActionComplete:
		if from != entity.ServiceRequestStatusInProgress {
			return nil, invalid(op, from)
		}
		d.To = entity.ServiceRequestStatusCompleted
		d.Patch.CompletedAt = &now
		d.AuditAction = entity.AuditActionServiceRequestComplete
		d.Notices = []Notice{{Audience: AudiencePatient, Event: NoticeCompleted}}

	case ActionCancel:
		if !from.Valid() || from.IsTerminal() {
			return nil, invalid(op, from)
		}
		d.To = entity.ServiceRequestStatusCancelled
		d.AuditAction = entity.AuditActionServiceRequestCancel
		d.Notices = []Notice{{Audience: AudiencePatient, Event: NoticeCancelled}}

	default:
		return nil, apperror.Validation(op, fmt.Sprintf("unknown action %q", action), nil)
	}

	d.Patch.Status = d.To
	return d, nil
}

func authorize(req *entity.ServiceRequest, action Action, actor entity.Actor) error {
	op := opName(action)
	switch action {
	case ActionConfirm, ActionConfirmPayment, ActionCancel:
		if !entity.IsFrontDesk(actor.Role) {
			return apperror.Permission(op, fmt.Sprintf("role %q may not %s", actor.Role, action))
		}
	case ActionStartWork, ActionComplete:
		dept, ok := req.ServiceType.DepartmentRole()
		if !ok {
			return apperror.Validation(op, fmt.Sprintf("unknown service type %q", req.ServiceType), nil)
		}
		if actor.Role != dept {
			return apperror.Permission(op, fmt.Sprintf("only %q staff may %s %s requests", dept, action, req.ServiceType))
		}
	}
	return nil
}

func invalid(op string, from entity.ServiceRequestStatus) error {
	return apperror.InvalidTransition(op, fmt.Sprintf("not allowed from status %q", from))
}

func opName(action Action) string {
	return fmt.Sprintf("%s service request", action)
}
