package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"backend/internal/audit"
	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/authz"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	FirstName   string   `json:"firstName" binding:"required"`
	LastName    string   `json:"lastName" binding:"required"`
	Username    string   `json:"username" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	PhoneNumber string   `json:"phoneNumber"`
	Password    string   `json:"password" binding:"required,min=6"`
	Roles       []string `json:"roles"`
}

type SelfRegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required,min=6"`
}

type UpdateUserRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	ImageURL    string `json:"imageUrl"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

type ToggleStatusRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type SearchUsersRequest struct {
	Keyword  string `form:"keyword"`
	IsActive *bool  `form:"isActive"`
}

type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	ImageURL       string    `json:"imageUrl"`
	IsActive       bool      `json:"isActive"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	Roles          []string  `json:"roles"`
}

// UserService covers account management, registration and the permission
// resolution used by the authorization gate.
type UserService interface {
	Search(ctx context.Context, req SearchUsersRequest, page pagination.Params) (*pagination.PageResponse[UserResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	SelfRegister(ctx context.Context, req SelfRegisterRequest) (*UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	AssignRoles(ctx context.Context, id uuid.UUID, req AssignRolesRequest) (*UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Permissions resolves the distinct permission names granted to the
	// user through every role it holds.
	Permissions(ctx context.Context, userID uuid.UUID) ([]string, error)
	// HasPermission reports whether the user holds the named permission.
	// The name is normalized, so both "Permissions.Users.View" and
	// "Users.View" resolve identically.
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

type userService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	recorder    *audit.Recorder
	cfg         *config.Config
}

// NewUserService returns a new instance of UserService.
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	permissions repository.PermissionRepository,
	recorder *audit.Recorder,
	cfg *config.Config,
) UserService {
	return &userService{
		users:       users,
		roles:       roles,
		permissions: permissions,
		recorder:    recorder,
		cfg:         cfg,
	}
}

func (s *userService) Search(ctx context.Context, req SearchUsersRequest, page pagination.Params) (*pagination.PageResponse[UserResponse], error) {
	filter := repository.UserSearchFilter{
		Keyword:  strings.TrimSpace(req.Keyword),
		IsActive: req.IsActive,
		Page:     page,
	}

	users, total, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	resp := pagination.NewPageResponse(items, total, page)
	return &resp, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("User Not Found.")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := s.checkUniqueness(ctx, req.Email, req.Username, req.PhoneNumber, uuid.Nil); err != nil {
		return nil, err
	}

	roleNames := req.Roles
	if len(roleNames) == 0 {
		roleNames = []string{authz.RoleBasic}
	}
	roles, err := s.resolveRoles(ctx, roleNames)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		Password:       string(hashed),
		IsActive:       true,
		EmailConfirmed: true,
		Roles:          roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Record(ctx, audit.Added("users", user))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) SelfRegister(ctx context.Context, req SelfRegisterRequest) (*UserResponse, error) {
	return s.Create(ctx, CreateUserRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Roles:       []string{authz.RoleBasic},
	})
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("User Not Found.")
	}

	if req.PhoneNumber != "" {
		taken, err := s.users.ExistsWithPhone(ctx, req.PhoneNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict(fmt.Sprintf("Phone number %s is already registered.", req.PhoneNumber))
		}
	}

	before := *user
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	user.ImageURL = strings.TrimSpace(req.ImageURL)

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if entry, changed := audit.Modified("users", &before, user); changed {
		s.recorder.Record(ctx, entry)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ToggleStatus flips the account between active and inactive. Accounts
// holding the administrator role are protected from deactivation.
func (s *userService) ToggleStatus(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("User Not Found.")
	}

	if user.IsActive && user.HasRole(authz.RoleAdmin) {
		return nil, apperror.Conflict("Administrators Profile's Status cannot be toggled.")
	}

	before := *user
	user.IsActive = !user.IsActive

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}

	if entry, changed := audit.Modified("users", &before, user); changed {
		s.recorder.Record(ctx, entry)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// AssignRoles replaces the user's role set. The root admin account always
// keeps the administrator role.
func (s *userService) AssignRoles(ctx context.Context, id uuid.UUID, req AssignRolesRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("User Not Found.")
	}

	roles, err := s.resolveRoles(ctx, req.Roles)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(user.Email, s.cfg.SeedAdminEmail) && !containsRole(roles, authz.RoleAdmin) {
		return nil, apperror.Conflict("Cannot Remove Admin Role From Root Admin User.")
	}

	oldRoles := user.RoleNames()
	if err := s.users.ReplaceRoles(ctx, user, roles); err != nil {
		return nil, fmt.Errorf("failed to assign roles: %w", err)
	}
	user.Roles = roles

	// Role membership lives in a join table, so the diff is recorded
	// explicitly rather than through a field snapshot.
	s.recorder.Record(ctx, audit.Entry{
		TableName:       "users",
		Type:            model.TrailUpdate,
		PrimaryKey:      map[string]interface{}{"ID": user.ID},
		OldValues:       map[string]interface{}{"Roles": oldRoles},
		NewValues:       map[string]interface{}{"Roles": user.RoleNames()},
		AffectedColumns: []string{"Roles"},
	})

	resp := toUserResponse(user)
	return &resp, nil
}

// Delete marks the account deleted and deactivates it; the row is never
// physically removed. The store rewrite flips the soft-delete marker, so the
// resulting trail is recorded as a Delete even though storage sees an update.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("User Not Found.")
	}

	if user.HasRole(authz.RoleAdmin) {
		return apperror.Conflict("Administrators Profile cannot be deleted.")
	}

	before := *user
	if err := s.users.Delete(ctx, user); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if entry, changed := audit.Modified("users", &before, user); changed {
		s.recorder.Record(ctx, entry)
	}
	return nil
}

func (s *userService) Permissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("User Not Found.")
	}

	names, err := s.permissions.ListNamesForRoles(ctx, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, authz.Prefix+"."+name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *userService) HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	granted, err := s.Permissions(ctx, userID)
	if err != nil {
		return false, err
	}

	want := authz.Normalize(permission)
	for _, name := range granted {
		if strings.EqualFold(authz.Normalize(name), want) {
			return true, nil
		}
	}
	return false, nil
}

func (s *userService) checkUniqueness(ctx context.Context, email, username, phone string, exceptID uuid.UUID) error {
	taken, err := s.users.ExistsWithEmail(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict(fmt.Sprintf("Email %s is already registered.", email))
	}

	taken, err = s.users.ExistsWithUsername(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict(fmt.Sprintf("Username %s is already taken.", username))
	}

	if phone != "" {
		taken, err = s.users.ExistsWithPhone(ctx, phone, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(fmt.Sprintf("Phone number %s is already registered.", phone))
		}
	}
	return nil
}

func (s *userService) resolveRoles(ctx context.Context, names []string) ([]model.Role, error) {
	roles := make([]model.Role, 0, len(names))
	for _, name := range names {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			return nil, apperror.NotFound(fmt.Sprintf("Role %s Not Found.", name))
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

func containsRole(roles []model.Role, name string) bool {
	for _, r := range roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Username:       user.Username,
		Email:          user.Email,
		PhoneNumber:    user.PhoneNumber,
		ImageURL:       user.ImageURL,
		IsActive:       user.IsActive,
		EmailConfirmed: user.EmailConfirmed,
		Roles:          user.RoleNames(),
	}
}
