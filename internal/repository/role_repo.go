package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository defines data access for Role entities.
type RoleRepository interface {
	List(ctx context.Context) ([]model.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	ExistsWithName(ctx context.Context, name string, exceptID uuid.UUID) (bool, error)
	Create(ctx context.Context, role *model.Role) error
	Save(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, role *model.Role) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository returns a GORM-backed RoleRepository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "lower(name) = lower(?)", name).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ExistsWithName checks name uniqueness case-insensitively, scoped to
// not-self when exceptID is set.
func (r *roleRepository) ExistsWithName(ctx context.Context, name string, exceptID uuid.UUID) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.Role{}).Where("lower(name) = lower(?)", name)
	if exceptID != uuid.Nil {
		db = db.Where("id <> ?", exceptID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Save(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Delete(role).Error
}

// CountUsers counts non-deleted users currently holding the role.
func (r *roleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Table("user_roles").
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_on IS NULL").
		Where("user_roles.role_id = ?", roleID).
		Count(&count).Error
	return count, err
}
