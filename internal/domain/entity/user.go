package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the read model of the external identity provider's accounts.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID    int       `gorm:"not null;index" json:"role_id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Actor is the authenticated caller of an operation. It is passed explicitly
// into every usecase instead of being read from ambient state.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// Identifier is the value stored in secretary_confirmed_by and similar columns.
func (a Actor) Identifier() string {
	if a.Email != "" {
		return a.Email
	}
	return a.ID.String()
}
