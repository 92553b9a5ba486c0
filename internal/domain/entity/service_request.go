package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceType is the diagnostic department a request is ordered from.
type ServiceType string

const (
	ServiceTypeXRay       ServiceType = "xray"
	ServiceTypeUltrasound ServiceType = "ultrasound"
	ServiceTypeLab        ServiceType = "lab"
	ServiceTypeAudiometry ServiceType = "audiometry"
)

// AllServiceTypes lists every declared ServiceType. Tests walk it to make sure
// each type has a department role.
var AllServiceTypes = []ServiceType{
	ServiceTypeXRay,
	ServiceTypeUltrasound,
	ServiceTypeLab,
	ServiceTypeAudiometry,
}

// DepartmentRole maps a service type to the staff role that works its queue.
func (t ServiceType) DepartmentRole() (string, bool) {
	switch t {
	case ServiceTypeXRay:
		return RoleXRay, true
	case ServiceTypeUltrasound:
		return RoleUltrasound, true
	case ServiceTypeLab:
		return RoleLab, true
	case ServiceTypeAudiometry:
		return RoleAudiometry, true
	}
	return "", false
}

func (t ServiceType) Valid() bool {
	_, ok := t.DepartmentRole()
	return ok
}

// ServiceRequestStatus is the workflow state of a request.
type ServiceRequestStatus string

const (
	ServiceRequestStatusPending            ServiceRequestStatus = "pending"
	ServiceRequestStatusPaymentRequired    ServiceRequestStatus = "payment_required"
	ServiceRequestStatusSecretaryConfirmed ServiceRequestStatus = "secretary_confirmed"
	ServiceRequestStatusInProgress         ServiceRequestStatus = "in_progress"
	ServiceRequestStatusCompleted          ServiceRequestStatus = "completed"
	ServiceRequestStatusCancelled          ServiceRequestStatus = "cancelled"
)

var AllServiceRequestStatuses = []ServiceRequestStatus{
	ServiceRequestStatusPending,
	ServiceRequestStatusPaymentRequired,
	ServiceRequestStatusSecretaryConfirmed,
	ServiceRequestStatusInProgress,
	ServiceRequestStatusCompleted,
	ServiceRequestStatusCancelled,
}

// DepartmentQueueStatuses is the status allow-list of every department worklist.
// Pending requests are not actionable until a secretary confirms them.
var DepartmentQueueStatuses = []ServiceRequestStatus{
	ServiceRequestStatusSecretaryConfirmed,
	ServiceRequestStatusPaymentRequired,
	ServiceRequestStatusInProgress,
	ServiceRequestStatusCompleted,
}

// Rank orders statuses along the forward path; cancelled is terminal and ranks last.
func (s ServiceRequestStatus) Rank() int {
	switch s {
	case ServiceRequestStatusPending:
		return 0
	case ServiceRequestStatusPaymentRequired:
		return 1
	case ServiceRequestStatusSecretaryConfirmed:
		return 2
	case ServiceRequestStatusInProgress:
		return 3
	case ServiceRequestStatusCompleted:
		return 4
	case ServiceRequestStatusCancelled:
		return 5
	}
	return -1
}

func (s ServiceRequestStatus) Valid() bool {
	return s.Rank() >= 0
}

func (s ServiceRequestStatus) IsTerminal() bool {
	return s == ServiceRequestStatusCompleted || s == ServiceRequestStatusCancelled
}

// PaymentStatus is written by the external payment flow.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

const DefaultCurrency = "ILS"

// ServiceRequest is a single ordered diagnostic service tracked from creation to completion.
type ServiceRequest struct {
	ID             int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientEmail   string               `gorm:"type:varchar(255);not null;index" json:"patient_email"`
	PatientName    string               `gorm:"type:varchar(255)" json:"patient_name"`
	DoctorID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DoctorName     string               `gorm:"type:varchar(255)" json:"doctor_name"`
	ServiceType    ServiceType          `gorm:"type:varchar(20);not null;index" json:"service_type"`
	ServiceSubtype *string              `gorm:"type:varchar(100)" json:"service_subtype,omitempty"`
	Price          decimal.NullDecimal  `gorm:"type:decimal(10,2)" json:"price"`
	Currency       string               `gorm:"type:varchar(3);not null;default:'ILS'" json:"currency"`
	PaymentStatus  *PaymentStatus       `gorm:"type:varchar(20)" json:"payment_status,omitempty"`
	Status         ServiceRequestStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	Notes          string               `gorm:"type:text" json:"notes,omitempty"`

	SecretaryConfirmedAt *time.Time `json:"secretary_confirmed_at,omitempty"`
	SecretaryConfirmedBy *string    `gorm:"type:varchar(255)" json:"secretary_confirmed_by,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Resolved from the service catalog on read, never persisted.
	ServiceName   string `gorm:"-" json:"service_name,omitempty"`
	ServiceNameAr string `gorm:"-" json:"service_name_ar,omitempty"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// RequiresPayment reports whether the request carries a positive price.
func (r *ServiceRequest) RequiresPayment() bool {
	return r.Price.Valid && r.Price.Decimal.IsPositive()
}

func (r *ServiceRequest) IsPaid() bool {
	return r.PaymentStatus != nil && *r.PaymentStatus == PaymentStatusPaid
}

func (r *ServiceRequest) Subtype() string {
	if r.ServiceSubtype == nil {
		return ""
	}
	return *r.ServiceSubtype
}

// StatusPatch is the set of workflow columns a transition writes. Nil fields are left untouched.
type StatusPatch struct {
	Status               ServiceRequestStatus
	SecretaryConfirmedAt *time.Time
	SecretaryConfirmedBy *string
	CompletedAt          *time.Time
}

// Columns returns the patch as a gorm update map.
func (p *StatusPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{"status": p.Status}
	if p.SecretaryConfirmedAt != nil {
		cols["secretary_confirmed_at"] = *p.SecretaryConfirmedAt
	}
	if p.SecretaryConfirmedBy != nil {
		cols["secretary_confirmed_by"] = *p.SecretaryConfirmedBy
	}
	if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	}
	return cols
}

// Apply copies the patch onto r.
func (p *StatusPatch) Apply(r *ServiceRequest) {
	r.Status = p.Status
	if p.SecretaryConfirmedAt != nil {
		t := *p.SecretaryConfirmedAt
		r.SecretaryConfirmedAt = &t
	}
	if p.SecretaryConfirmedBy != nil {
		by := *p.SecretaryConfirmedBy
		r.SecretaryConfirmedBy = &by
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		r.CompletedAt = &t
	}
}
