package model

import (
	"time"

	"github.com/google/uuid"
)

// Trail types.
const (
	TrailCreate = "Create"
	TrailUpdate = "Update"
	TrailDelete = "Delete"
)

// Trail is one immutable audit record of an entity mutation. Rows are
// append-only and excluded from auditing themselves.
type Trail struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Type            string    `gorm:"type:varchar(10);index;not null" json:"type"`
	TableName       string    `gorm:"type:varchar(100);index;not null" json:"table_name"`
	DateTime        time.Time `gorm:"index" json:"date_time"`
	OldValues       string    `gorm:"type:text" json:"old_values,omitempty"`
	NewValues       string    `gorm:"type:text" json:"new_values,omitempty"`
	AffectedColumns string    `gorm:"type:text" json:"affected_columns,omitempty"`
	PrimaryKey      string    `gorm:"type:varchar(500);not null" json:"primary_key"`
}
