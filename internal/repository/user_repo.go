package repository

import (
	"context"

	"backend/internal/audit"
	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSearchFilter narrows a user search. Keyword matches name, username and
// email; IsActive filters on account status when set.
type UserSearchFilter struct {
	Keyword  string
	IsActive *bool
	Page     pagination.Params
}

// UserRepository defines data access for User entities. Reads exclude
// soft-deleted rows.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsWithEmail(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	ExistsWithUsername(ctx context.Context, username string, exceptID uuid.UUID) (bool, error)
	ExistsWithPhone(ctx context.Context, phone string, exceptID uuid.UUID) (bool, error)
	Search(ctx context.Context, filter UserSearchFilter) ([]model.User, int64, error)
	ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error
	// Delete rewrites the hard-delete intent into a timestamped soft-delete
	// mark plus a deactivation; the row stays in place.
	Delete(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a GORM-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_on IS NULL")
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Scopes(notDeleted).Preload("Roles").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Scopes(notDeleted).Preload("Roles").
		First(&user, "lower(email) = lower(?)", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Scopes(notDeleted).Preload("Roles").
		First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) existsWhere(ctx context.Context, exceptID uuid.UUID, query string, args ...interface{}) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.User{}).Scopes(notDeleted).Where(query, args...)
	if exceptID != uuid.Nil {
		db = db.Where("id <> ?", exceptID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ExistsWithEmail(ctx context.Context, email string, exceptID uuid.UUID) (bool, error) {
	return r.existsWhere(ctx, exceptID, "lower(email) = lower(?)", email)
}

func (r *userRepository) ExistsWithUsername(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	return r.existsWhere(ctx, exceptID, "username = ?", username)
}

func (r *userRepository) ExistsWithPhone(ctx context.Context, phone string, exceptID uuid.UUID) (bool, error) {
	return r.existsWhere(ctx, exceptID, "phone_number = ?", phone)
}

func (r *userRepository) Search(ctx context.Context, filter UserSearchFilter) ([]model.User, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.User{}).Scopes(notDeleted)

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR username ILIKE ? OR email ILIKE ?",
			like, like, like, like,
		)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := db.Preload("Roles").
		Order("created_at DESC").
		Offset(filter.Page.Offset).Limit(filter.Page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	return GetDB(ctx, r.db).Model(user).Association("Roles").Replace(roles)
}

func (r *userRepository) Delete(ctx context.Context, user *model.User) error {
	return audit.SoftDelete(ctx, GetDB(ctx, r.db), user)
}
