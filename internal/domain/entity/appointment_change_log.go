package entity

import "time"

// ChangeKind classifies an appointment change.
type ChangeKind string

const (
	ChangeKindReschedule   ChangeKind = "reschedule"
	ChangeKindCancellation ChangeKind = "cancellation"
)

func (k ChangeKind) Valid() bool {
	return k == ChangeKindReschedule || k == ChangeKindCancellation
}

// AppointmentChangeLog is an append-only record of an appointment change.
// AdminNotified is the only mutable column.
type AppointmentChangeLog struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID *string    `gorm:"type:varchar(100);index" json:"appointment_id,omitempty"`
	Kind          ChangeKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	PatientName   string     `gorm:"type:varchar(255)" json:"patient_name"`
	PatientEmail  string     `gorm:"type:varchar(255);index" json:"patient_email"`
	ChangedBy     string     `gorm:"type:varchar(255)" json:"changed_by"`
	Reason        string     `gorm:"type:text" json:"reason"`
	BeforeState   JSON       `gorm:"type:jsonb" json:"before_state,omitempty"`
	AfterState    JSON       `gorm:"type:jsonb" json:"after_state,omitempty"`
	AdminNotified bool       `gorm:"not null;default:false;index" json:"admin_notified"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AppointmentChangeLog) TableName() string {
	return "appointment_change_logs"
}

// ChangeLogFilter narrows a change log listing. Search is applied in memory
// over patient name, email and reason.
type ChangeLogFilter struct {
	Kind   *ChangeKind
	Search string
	Limit  int
}
