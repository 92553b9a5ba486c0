package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SendNotificationRequest targets an email address or a role token such as "admin" or "Lab".
type SendNotificationRequest struct {
	Target       string `json:"target" validate:"required,max=255"`
	Title        string `json:"title" validate:"required,max=255"`
	Message      string `json:"message" validate:"required"`
	Type         string `json:"type" validate:"omitempty,oneof=info success warning error"`
	RelatedTable string `json:"related_table,omitempty" validate:"omitempty,max=100"`
	RelatedID    string `json:"related_id,omitempty" validate:"omitempty,max=100"`
}

// Response DTOs

type NotificationResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Type         string    `json:"type"`
	Read         bool      `json:"read"`
	RelatedTable *string   `json:"related_table,omitempty"`
	RelatedID    *string   `json:"related_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	Unread        int64                  `json:"unread"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

// NotificationEvent is one frame of the live notification stream.
type NotificationEvent struct {
	Type         string               `json:"type"`
	Notification NotificationResponse `json:"notification"`
	Unread       int64                `json:"unread"`
	At           time.Time            `json:"at"`
}
