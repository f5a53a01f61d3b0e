package model

import (
	"github.com/google/uuid"
)

// Action is an operation kind (View, Create, Update, ...). Reference data
// created at seed time and rarely mutated.
type Action struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
}

// Function is a module/feature area permissions are scoped to. ParentID
// allows a menu hierarchy.
type Function struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ParentID  *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order"`
	URL       string     `gorm:"type:varchar(255)" json:"url"`
	Icon      string     `gorm:"type:varchar(100)" json:"icon"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`

	Actions []ActionInFunction `gorm:"foreignKey:FunctionID" json:"actions,omitempty"`
}

// ActionInFunction declares which actions are valid for a function.
// Composite key keeps the pairs unique.
type ActionInFunction struct {
	ActionID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"action_id"`
	FunctionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"function_id"`

	Action   Action   `gorm:"foreignKey:ActionID" json:"action"`
	Function Function `gorm:"foreignKey:FunctionID" json:"-"`
}

// Permission grants a role the right to perform an action on a function.
// Rows are owned by the role lifecycle: deleting a role removes its rows
// first, and functions/actions cannot be deleted while referenced here.
type Permission struct {
	RoleID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"role_id"`
	FunctionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"function_id"`
	ActionID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"action_id"`

	Role     Role     `gorm:"foreignKey:RoleID" json:"-"`
	Function Function `gorm:"foreignKey:FunctionID" json:"-"`
	Action   Action   `gorm:"foreignKey:ActionID" json:"-"`
}
