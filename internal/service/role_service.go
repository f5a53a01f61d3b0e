package service

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/audit"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/authz"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateOrUpdateRoleRequest struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
}

type UpdateRolePermissionsRequest struct {
	// Permissions carries permission names, with or without the
	// "Permissions." prefix.
	Permissions []string `json:"permissions" binding:"required"`
}

type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	UserCount   int64     `json:"userCount"`
}

type RolePermissionAction struct {
	ActionID       uuid.UUID `json:"actionId"`
	Name           string    `json:"name"`
	PermissionName string    `json:"permissionName"`
	Selected       bool      `json:"selected"`
}

// RolePermissionFunction is one row of the permission matrix: a function with
// every action it supports, flagged with whether the role holds the grant.
type RolePermissionFunction struct {
	FunctionID uuid.UUID              `json:"functionId"`
	Name       string                 `json:"name"`
	Actions    []RolePermissionAction `json:"actions"`
}

// RoleService manages roles and their permission grants.
type RoleService interface {
	List(ctx context.Context) ([]RoleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	CreateOrUpdate(ctx context.Context, req CreateOrUpdateRoleRequest) (*RoleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Permissions returns the full permission matrix for the role: every
	// function with every valid action, each flagged Selected when granted.
	Permissions(ctx context.Context, roleID uuid.UUID) ([]RolePermissionFunction, error)
	// UpdatePermissions replaces the role's grant set. The administrator
	// role's grants are fixed.
	UpdatePermissions(ctx context.Context, roleID uuid.UUID, req UpdateRolePermissionsRequest) error
}

type roleService struct {
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	functions   repository.FunctionRepository
	tx          repository.TransactionManager
	recorder    *audit.Recorder
}

// NewRoleService returns a new instance of RoleService.
func NewRoleService(
	roles repository.RoleRepository,
	permissions repository.PermissionRepository,
	functions repository.FunctionRepository,
	tx repository.TransactionManager,
	recorder *audit.Recorder,
) RoleService {
	return &roleService{
		roles:       roles,
		permissions: permissions,
		functions:   functions,
		tx:          tx,
		recorder:    recorder,
	}
}

func (s *roleService) List(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		resp, err := s.toRoleResponse(ctx, &roles[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *roleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Role Not Found.")
	}
	return s.toRoleResponse(ctx, role)
}

func (s *roleService) CreateOrUpdate(ctx context.Context, req CreateOrUpdateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if req.ID == nil || *req.ID == uuid.Nil {
		return s.create(ctx, name, req.Description)
	}
	return s.update(ctx, *req.ID, name, req.Description)
}

func (s *roleService) create(ctx context.Context, name, description string) (*RoleResponse, error) {
	taken, err := s.roles.ExistsWithName(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(fmt.Sprintf("Role %s already exists.", name))
	}

	role := &model.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.recorder.Record(ctx, audit.Added("roles", role))
	return s.toRoleResponse(ctx, role)
}

func (s *roleService) update(ctx context.Context, id uuid.UUID, name, description string) (*RoleResponse, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Role Not Found.")
	}

	if authz.IsDefaultRole(role.Name) {
		return nil, apperror.Conflict(fmt.Sprintf("Not allowed to modify %s Role.", role.Name))
	}

	taken, err := s.roles.ExistsWithName(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(fmt.Sprintf("Role %s already exists.", name))
	}

	before := *role
	role.Name = name
	role.Description = description

	if err := s.roles.Save(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if entry, changed := audit.Modified("roles", &before, role); changed {
		s.recorder.Record(ctx, entry)
	}
	return s.toRoleResponse(ctx, role)
}

// Delete removes a role along with its grants. Built-in roles and roles
// still held by users are protected.
func (s *roleService) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("Role Not Found.")
	}

	if authz.IsDefaultRole(role.Name) {
		return apperror.Conflict(fmt.Sprintf("Not allowed to delete %s Role.", role.Name))
	}

	users, err := s.roles.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return apperror.Conflict(fmt.Sprintf("Not allowed to delete %s Role as it is being used.", role.Name))
	}

	// Grants and the role go together or not at all. The audit append stays
	// outside the transaction.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permissions.DeleteByRole(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete role permissions: %w", err)
		}
		return s.roles.Delete(txCtx, role)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.Deleted("roles", role))
	return nil
}

func (s *roleService) Permissions(ctx context.Context, roleID uuid.UUID) ([]RolePermissionFunction, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, apperror.NotFound("Role Not Found.")
	}

	grants, err := s.permissions.ListByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	type pair struct{ functionID, actionID uuid.UUID }
	granted := make(map[pair]bool, len(grants))
	for _, g := range grants {
		granted[pair{g.FunctionID, g.ActionID}] = true
	}

	functions, err := s.functions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}

	out := make([]RolePermissionFunction, 0, len(functions))
	for _, fn := range functions {
		row := RolePermissionFunction{
			FunctionID: fn.ID,
			Name:       fn.Name,
			Actions:    make([]RolePermissionAction, 0, len(fn.Actions)),
		}
		for _, link := range fn.Actions {
			row.Actions = append(row.Actions, RolePermissionAction{
				ActionID:       link.ActionID,
				Name:           link.Action.Name,
				PermissionName: authz.PermissionName(fn.Name, link.Action.Name),
				Selected:       granted[pair{fn.ID, link.ActionID}],
			})
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *roleService) UpdatePermissions(ctx context.Context, roleID uuid.UUID, req UpdateRolePermissionsRequest) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return apperror.NotFound("Role Not Found.")
	}

	if role.Name == authz.RoleAdmin {
		return apperror.Conflict("Not allowed to modify Permissions for this Role.")
	}

	grants, err := s.resolveGrants(ctx, roleID, req.Permissions)
	if err != nil {
		return err
	}

	if err := s.permissions.ReplaceForRole(ctx, roleID, grants); err != nil {
		return fmt.Errorf("failed to update role permissions: %w", err)
	}

	entry := audit.Entry{
		TableName:       "permissions",
		Type:            model.TrailUpdate,
		PrimaryKey:      map[string]interface{}{"RoleID": roleID},
		NewValues:       map[string]interface{}{"Permissions": req.Permissions},
		AffectedColumns: []string{"Permissions"},
	}
	s.recorder.Record(ctx, entry)
	return nil
}

// resolveGrants maps permission names onto function/action rows. Unknown
// names and pairs outside the declared action-in-function set are rejected.
func (s *roleService) resolveGrants(ctx context.Context, roleID uuid.UUID, names []string) ([]model.Permission, error) {
	functions, err := s.functions.List(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct{ function, action string }
	valid := map[pair]model.Permission{}
	for _, fn := range functions {
		for _, link := range fn.Actions {
			key := pair{strings.ToLower(fn.Name), strings.ToLower(link.Action.Name)}
			valid[key] = model.Permission{
				RoleID:     roleID,
				FunctionID: fn.ID,
				ActionID:   link.ActionID,
			}
		}
	}

	seen := map[pair]bool{}
	grants := make([]model.Permission, 0, len(names))
	for _, name := range names {
		normalized := authz.Normalize(name)
		parts := strings.SplitN(normalized, ".", 2)
		if len(parts) != 2 {
			return nil, apperror.Validation(fmt.Sprintf("Permission %s is not valid.", name))
		}
		key := pair{strings.ToLower(parts[0]), strings.ToLower(parts[1])}
		grant, ok := valid[key]
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("Permission %s is not valid.", name))
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		grants = append(grants, grant)
	}
	return grants, nil
}

func (s *roleService) toRoleResponse(ctx context.Context, role *model.Role) (*RoleResponse, error) {
	users, err := s.roles.CountUsers(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	return &RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsDefault:   authz.IsDefaultRole(role.Name),
		UserCount:   users,
	}, nil
}
