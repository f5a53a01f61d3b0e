package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the identity record. Accounts are deactivated, never physically
// removed; RefreshToken/RefreshTokenExpiry hold the single current refresh
// token (a new login or refresh overwrites it).
type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName          string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName           string     `gorm:"type:varchar(100)" json:"last_name"`
	Username           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber        string     `gorm:"type:varchar(20)" json:"phone_number"`
	Password           string     `gorm:"type:varchar(255);not null" json:"-"`
	ImageURL           string     `gorm:"type:varchar(500)" json:"image_url"`
	IsActive           bool       `gorm:"default:true" json:"is_active"`
	EmailConfirmed     bool       `gorm:"default:false" json:"email_confirmed"`
	RefreshToken       string     `gorm:"type:varchar(255)" json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`
	Roles              []Role     `gorm:"many2many:user_roles;" json:"roles,omitempty"`

	AuditableModel
	SoftDeleteModel
}

// Deactivate flips the account off. Used by the soft-delete rewrite and the
// toggle-status operation.
func (u *User) Deactivate() {
	u.IsActive = false
}

// FullName joins first and last name for token claims and display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the loaded role set contains the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
