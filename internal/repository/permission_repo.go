package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionRepository defines data access for the Role×Function×Action
// grant table.
type PermissionRepository interface {
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]model.Permission, error)
	// ReplaceForRole deletes every grant of the role and inserts the new set
	// in one transaction.
	ReplaceForRole(ctx context.Context, roleID uuid.UUID, grants []model.Permission) error
	DeleteByRole(ctx context.Context, roleID uuid.UUID) error
	// ListNamesForRoles resolves the distinct "Function.Action" strings
	// granted to any of the named roles.
	ListNamesForRoles(ctx context.Context, roleNames []string) ([]string, error)
	ExistsForFunction(ctx context.Context, functionID uuid.UUID) (bool, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository returns a GORM-backed PermissionRepository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]model.Permission, error) {
	var grants []model.Permission
	if err := GetDB(ctx, r.db).Where("role_id = ?", roleID).Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *permissionRepository) ReplaceForRole(ctx context.Context, roleID uuid.UUID, grants []model.Permission) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.Permission{}).Error; err != nil {
			return err
		}
		if len(grants) == 0 {
			return nil
		}
		return tx.Create(&grants).Error
	})
}

func (r *permissionRepository) DeleteByRole(ctx context.Context, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("role_id = ?", roleID).Delete(&model.Permission{}).Error
}

func (r *permissionRepository) ListNamesForRoles(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}

	var names []string
	err := GetDB(ctx, r.db).
		Model(&model.Permission{}).
		Distinct("functions.name || '.' || actions.name").
		Joins("JOIN roles ON roles.id = permissions.role_id").
		Joins("JOIN functions ON functions.id = permissions.function_id").
		Joins("JOIN actions ON actions.id = permissions.action_id").
		Where("roles.name IN ?", roleNames).
		Pluck("functions.name || '.' || actions.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *permissionRepository) ExistsForFunction(ctx context.Context, functionID uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).
		Model(&model.Permission{}).
		Where("function_id = ?", functionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
