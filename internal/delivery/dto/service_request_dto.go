package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateServiceRequestRequest carries the fields of a new order. Any status in
// the body is ignored; new requests always start pending.
type CreateServiceRequestRequest struct {
	PatientID      string           `json:"patient_id" validate:"required,uuid"`
	PatientEmail   string           `json:"patient_email" validate:"required,email"`
	PatientName    string           `json:"patient_name" validate:"omitempty,max=255"`
	DoctorID       string           `json:"doctor_id" validate:"required,uuid"`
	DoctorName     string           `json:"doctor_name" validate:"omitempty,max=255"`
	ServiceType    string           `json:"service_type" validate:"required,oneof=xray ultrasound lab audiometry"`
	ServiceSubtype *string          `json:"service_subtype,omitempty" validate:"omitempty,max=100"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Currency       string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes          string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type RecordPaymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid completed failed refunded"`
}

type CancelServiceRequestRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type ManagementQuery struct {
	ServiceType string   `json:"service_type" validate:"omitempty,oneof=xray ultrasound lab audiometry"`
	Statuses    []string `json:"statuses" validate:"omitempty,dive,oneof=pending payment_required secretary_confirmed in_progress completed cancelled"`
}

// Response DTOs

type ServiceRequestResponse struct {
	ID                   int64               `json:"id"`
	PatientID            uuid.UUID           `json:"patient_id"`
	PatientEmail         string              `json:"patient_email"`
	PatientName          string              `json:"patient_name"`
	DoctorID             uuid.UUID           `json:"doctor_id"`
	DoctorName           string              `json:"doctor_name"`
	ServiceType          string              `json:"service_type"`
	ServiceSubtype       *string             `json:"service_subtype,omitempty"`
	ServiceName          string              `json:"service_name,omitempty"`
	ServiceNameAr        string              `json:"service_name_ar,omitempty"`
	DisplayName          string              `json:"display_name,omitempty"`
	Price                decimal.NullDecimal `json:"price"`
	Currency             string              `json:"currency"`
	PaymentStatus        *string             `json:"payment_status,omitempty"`
	Status               string              `json:"status"`
	Notes                string              `json:"notes,omitempty"`
	SecretaryConfirmedAt *time.Time          `json:"secretary_confirmed_at,omitempty"`
	SecretaryConfirmedBy *string             `json:"secretary_confirmed_by,omitempty"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type ServiceRequestListResponse struct {
	Requests []ServiceRequestResponse `json:"requests"`
	Total    int                      `json:"total"`
}
