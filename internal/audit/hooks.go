package audit

import (
	"context"
	"time"

	"backend/internal/currentuser"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterCallbacks installs the auditable-entity stamping hooks on the GORM
// connection. CreatedBy and LastModifiedBy/LastModifiedAt are filled from
// the request identity before every save, independent of trail capture.
func RegisterCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").
		Register("audit:stamp_created", stampCreated); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").
		Register("audit:stamp_modified", stampModified)
}

func stampCreated(tx *gorm.DB) {
	forEachAuditable(tx, func(entity model.Auditable, by uuid.UUID) {
		entity.StampCreated(by, time.Now().UTC())
	})
}

func stampModified(tx *gorm.DB) {
	forEachAuditable(tx, func(entity model.Auditable, by uuid.UUID) {
		entity.StampModified(by, time.Now().UTC())
	})
}

func forEachAuditable(tx *gorm.DB, visit func(model.Auditable, uuid.UUID)) {
	if tx.Statement == nil || tx.Statement.Dest == nil {
		return
	}
	userID := currentuser.UserID(tx.Statement.Context)
	if userID == uuid.Nil {
		return // anonymous writes (seeding, self-register) stay unstamped
	}
	if entity, ok := tx.Statement.Dest.(model.Auditable); ok {
		visit(entity, userID)
	}
}

// SoftDelete rewrites a hard-delete intent into a timestamped mark plus a
// status flip, then persists the entity as an update. Reads exclude marked
// rows by default.
func SoftDelete(ctx context.Context, db *gorm.DB, entity model.SoftDeletable) error {
	entity.MarkDeleted(currentuser.UserID(ctx), time.Now().UTC())
	if deactivatable, ok := entity.(interface{ Deactivate() }); ok {
		deactivatable.Deactivate()
	}
	return db.WithContext(ctx).Save(entity).Error
}
