package model

import (
	"github.com/google/uuid"
)

// Role groups permission grants. The built-in Admin and Basic roles are
// protected: they cannot be renamed or deleted, and Admin's grants cannot
// be edited.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`

	AuditableModel
}
