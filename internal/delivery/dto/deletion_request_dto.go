package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDeletionRequestRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

type ReviewDeletionRequestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved declined"`
}

// Response DTOs

type DeletionRequestResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type DeletionRequestListResponse struct {
	Requests []DeletionRequestResponse `json:"requests"`
	Total    int                       `json:"total"`
}
