package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType drives how a client renders a notification.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

// Notification is one message addressed to one concrete recipient.
type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserEmail    string           `gorm:"type:varchar(255);not null;index" json:"user_email"`
	Title        string           `gorm:"type:varchar(255);not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	Type         NotificationType `gorm:"type:varchar(20);not null;default:'info'" json:"type"`
	Read         bool             `gorm:"not null;default:false;index" json:"read"`
	RelatedTable *string          `gorm:"type:varchar(100)" json:"related_table,omitempty"`
	RelatedID    *string          `gorm:"type:uuid" json:"related_id,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationMessage is what a caller asks the dispatcher to deliver. Target is
// either a concrete email address or a role token such as "admin" or "Lab".
type NotificationMessage struct {
	Target       string
	Title        string
	Message      string
	Type         NotificationType
	RelatedTable string
	RelatedID    string
}

// ChangeType is the kind of row change carried by the realtime feed.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// NotificationChange is one realtime event scoped to a recipient.
type NotificationChange struct {
	Type      ChangeType   `json:"type"`
	Recipient string       `json:"recipient"`
	Row       Notification `json:"row"`
	At        time.Time    `json:"at"`
}

// UnreadCount is one row of the per-recipient unread aggregation.
type UnreadCount struct {
	UserEmail string
	Unread    int64
}
