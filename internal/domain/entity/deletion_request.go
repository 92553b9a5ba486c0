package entity

import (
	"time"

	"github.com/google/uuid"
)

type DeletionRequestStatus string

const (
	DeletionRequestStatusPending  DeletionRequestStatus = "pending"
	DeletionRequestStatusApproved DeletionRequestStatus = "approved"
	DeletionRequestStatusDeclined DeletionRequestStatus = "declined"
)

// DeletionRequest is a user's request to have their account removed.
type DeletionRequest struct {
	ID         uuid.UUID             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	UserEmail  string                `gorm:"type:varchar(255);not null" json:"user_email"`
	Reason     string                `gorm:"type:text" json:"reason"`
	Status     DeletionRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy *string               `gorm:"type:varchar(255)" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time            `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DeletionRequest) TableName() string {
	return "deletion_requests"
}

func (d *DeletionRequest) IsPending() bool {
	return d.Status == DeletionRequestStatusPending
}
