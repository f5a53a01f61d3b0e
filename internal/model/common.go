package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditableModel carries the bookkeeping columns stamped on every tracked
// entity before a save. Embedded by entities that opt into auditing.
type AuditableModel struct {
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	LastModifiedBy *uuid.UUID `gorm:"type:uuid" json:"last_modified_by,omitempty"`
}

// SoftDeleteModel adds the soft-delete marker columns. A physical delete of
// an entity embedding this is rewritten into a timestamped mark, and default
// reads exclude marked rows.
type SoftDeleteModel struct {
	DeletedOn *time.Time `gorm:"index" json:"-"`
	DeletedBy *uuid.UUID `gorm:"type:uuid" json:"-"`
}

// Auditable is implemented by entities embedding AuditableModel.
type Auditable interface {
	StampCreated(by uuid.UUID, at time.Time)
	StampModified(by uuid.UUID, at time.Time)
}

// SoftDeletable is implemented by entities embedding SoftDeleteModel.
type SoftDeletable interface {
	MarkDeleted(by uuid.UUID, at time.Time)
	IsDeleted() bool
}

func (m *AuditableModel) StampCreated(by uuid.UUID, at time.Time) {
	m.CreatedBy = &by
	m.CreatedAt = at
}

func (m *AuditableModel) StampModified(by uuid.UUID, at time.Time) {
	m.LastModifiedBy = &by
	m.LastModifiedAt = &at
}

func (m *SoftDeleteModel) MarkDeleted(by uuid.UUID, at time.Time) {
	m.DeletedOn = &at
	m.DeletedBy = &by
}

func (m *SoftDeleteModel) IsDeleted() bool {
	return m.DeletedOn != nil
}
