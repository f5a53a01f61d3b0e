package database

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/config"
	"backend/internal/model"
	"backend/pkg/authz"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed populates the permission catalog reference data, the built-in roles
// and a root admin account. Idempotent: safe to run on every startup.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actions, err := seedActions(tx)
		if err != nil {
			return err
		}

		functions, err := seedFunctions(tx)
		if err != nil {
			return err
		}

		if err := seedActionInFunctions(tx, functions, actions); err != nil {
			return err
		}

		roles, err := seedRoles(tx)
		if err != nil {
			return err
		}

		if err := seedRolePermissions(tx, roles, functions, actions); err != nil {
			return err
		}

		return seedAdminUser(tx, cfg, roles[authz.RoleAdmin])
	})
}

func seedActions(tx *gorm.DB) (map[string]model.Action, error) {
	out := make(map[string]model.Action, len(authz.AllActions))
	for i, name := range authz.AllActions {
		var action model.Action
		err := tx.Where("name = ?", name).First(&action).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			action = model.Action{Name: name, SortOrder: i + 1, IsActive: true}
			if err = tx.Create(&action).Error; err != nil {
				return nil, fmt.Errorf("failed to seed action '%s': %w", name, err)
			}
		} else if err != nil {
			return nil, err
		}
		out[name] = action
	}
	return out, nil
}

func seedFunctions(tx *gorm.DB) (map[string]model.Function, error) {
	out := make(map[string]model.Function, len(authz.AllFunctions))
	for i, name := range authz.AllFunctions {
		var fn model.Function
		err := tx.Where("name = ?", name).First(&fn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fn = model.Function{Name: name, SortOrder: i + 1, IsActive: true}
			if err = tx.Create(&fn).Error; err != nil {
				return nil, fmt.Errorf("failed to seed function '%s': %w", name, err)
			}
		} else if err != nil {
			return nil, err
		}
		out[name] = fn
	}
	return out, nil
}

// seedActionInFunctions declares every action valid for every function.
func seedActionInFunctions(tx *gorm.DB, functions map[string]model.Function, actions map[string]model.Action) error {
	for _, fn := range functions {
		for _, action := range actions {
			var count int64
			if err := tx.Model(&model.ActionInFunction{}).
				Where("action_id = ? AND function_id = ?", action.ID, fn.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			link := model.ActionInFunction{ActionID: action.ID, FunctionID: fn.ID}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link action '%s' to function '%s': %w", action.Name, fn.Name, err)
			}
		}
	}
	return nil
}

func seedRoles(tx *gorm.DB) (map[string]model.Role, error) {
	descriptions := map[string]string{
		authz.RoleAdmin: "Built-in administrator role with full access",
		authz.RoleBasic: "Built-in default role for new users",
	}

	out := make(map[string]model.Role, len(authz.DefaultRoles))
	for _, name := range authz.DefaultRoles {
		var role model.Role
		err := tx.Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = model.Role{Name: name, Description: descriptions[name]}
			if err = tx.Create(&role).Error; err != nil {
				return nil, fmt.Errorf("failed to seed role '%s': %w", name, err)
			}
		} else if err != nil {
			return nil, err
		}
		out[name] = role
	}
	return out, nil
}

// seedRolePermissions grants Admin every declared function/action pair and
// Basic the View and Search actions on every function. Only missing rows are
// inserted so operator-made grants survive restarts.
func seedRolePermissions(tx *gorm.DB, roles map[string]model.Role, functions map[string]model.Function, actions map[string]model.Action) error {
	basicActions := map[string]bool{authz.ActionView: true, authz.ActionSearch: true}

	for _, fn := range functions {
		for _, action := range actions {
			if err := grantIfMissing(tx, roles[authz.RoleAdmin].ID, fn.ID, action.ID); err != nil {
				return err
			}
			if basicActions[action.Name] {
				if err := grantIfMissing(tx, roles[authz.RoleBasic].ID, fn.ID, action.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func grantIfMissing(tx *gorm.DB, roleID, functionID, actionID uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Permission{}).
		Where("role_id = ? AND function_id = ? AND action_id = ?", roleID, functionID, actionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	perm := model.Permission{RoleID: roleID, FunctionID: functionID, ActionID: actionID}
	return tx.Create(&perm).Error
}

func seedAdminUser(tx *gorm.DB, cfg *config.Config, adminRole model.Role) error {
	var count int64
	if err := tx.Model(&model.User{}).Where("email = ?", cfg.SeedAdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := model.User{
		FirstName:      "System",
		LastName:       "Administrator",
		Username:       cfg.SeedAdminEmail,
		Email:          cfg.SeedAdminEmail,
		Password:       string(hashed),
		IsActive:       true,
		EmailConfirmed: true,
		Roles:          []model.Role{adminRole},
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}
