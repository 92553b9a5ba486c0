package dto

import (
	"time"
)

// Request DTOs

type RecordChangeRequest struct {
	AppointmentID *string                `json:"appointment_id,omitempty" validate:"omitempty,max=100"`
	Kind          string                 `json:"kind" validate:"required,oneof=reschedule cancellation"`
	PatientName   string                 `json:"patient_name" validate:"omitempty,max=255"`
	PatientEmail  string                 `json:"patient_email" validate:"omitempty,email"`
	Reason        string                 `json:"reason" validate:"omitempty,max=2000"`
	BeforeState   map[string]interface{} `json:"before_state"`
	AfterState    map[string]interface{} `json:"after_state"`
}

type ChangeLogQuery struct {
	Kind   string `json:"kind" validate:"omitempty,oneof=reschedule cancellation"`
	Search string `json:"search" validate:"omitempty,max=255"`
	Limit  int    `json:"limit" validate:"gte=0,lte=500"`
}

// Response DTOs

type ChangeLogResponse struct {
	ID            int64                  `json:"id"`
	AppointmentID *string                `json:"appointment_id,omitempty"`
	Kind          string                 `json:"kind"`
	PatientName   string                 `json:"patient_name"`
	PatientEmail  string                 `json:"patient_email"`
	ChangedBy     string                 `json:"changed_by"`
	Reason        string                 `json:"reason"`
	BeforeState   map[string]interface{} `json:"before_state,omitempty"`
	AfterState    map[string]interface{} `json:"after_state,omitempty"`
	AdminNotified bool                   `json:"admin_notified"`
	CreatedAt     time.Time              `json:"created_at"`
}

type ChangeLogListResponse struct {
	Changes []ChangeLogResponse `json:"changes"`
	Total   int                 `json:"total"`
}
