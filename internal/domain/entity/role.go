package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role names. Department roles are the tokens mapped from ServiceType.
const (
	RoleAdmin      = "admin"
	RoleSecretary  = "secretary"
	RoleDoctor     = "doctor"
	RolePatient    = "patient"
	RoleXRay       = "X Ray"
	RoleUltrasound = "Ultrasound"
	RoleLab        = "Lab"
	RoleAudiometry = "Audiometry"
)

// IsFrontDesk reports whether role may confirm, cancel and review requests.
func IsFrontDesk(role string) bool {
	return role == RoleAdmin || role == RoleSecretary
}

// IsKnownRole reports whether role is one of the role names above.
func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSecretary, RoleDoctor, RolePatient,
		RoleXRay, RoleUltrasound, RoleLab, RoleAudiometry:
		return true
	}
	return false
}
