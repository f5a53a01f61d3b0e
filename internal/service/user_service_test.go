package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"
	"backend/pkg/authz"
	"backend/pkg/pagination"

	"github.com/google/uuid"
)

func newUserFixture() (UserService, *fakeUserRepo, *fakeRoleRepo, *fakePermissionRepo, *fakeTrailRepo) {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo(
		model.Role{Name: authz.RoleAdmin},
		model.Role{Name: authz.RoleBasic},
	)
	permissions := newFakePermissionRepo()
	recorder, trails := newTestRecorder()
	svc := NewUserService(users, roles, permissions, recorder, testConfig())
	return svc, users, roles, permissions, trails
}

func TestCreateUserDefaultsToBasicRole(t *testing.T) {
	svc, _, _, _, trails := newUserFixture()

	created, err := svc.Create(context.Background(), CreateUserRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Username:  "jane",
		Email:     "Jane@Example.com",
		Password:  "secret123",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(created.Roles) != 1 || created.Roles[0] != authz.RoleBasic {
		t.Errorf("roles = %v, want [Basic]", created.Roles)
	}
	if created.Email != "jane@example.com" {
		t.Errorf("email = %q, want lowercased", created.Email)
	}

	// Creation lands one Create trail.
	if len(trails.trails) != 1 || trails.trails[0].Type != model.TrailCreate {
		t.Errorf("trails = %+v, want one Create entry", trails.trails)
	}
	if trails.trails[0].TableName != "users" {
		t.Errorf("trail table = %q, want users", trails.trails[0].TableName)
	}
}

func TestCreateUserUniquenessConflicts(t *testing.T) {
	svc, _, _, _, _ := newUserFixture()
	ctx := context.Background()

	base := CreateUserRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Username:    "jane",
		Email:       "jane@example.com",
		PhoneNumber: "555-0100",
		Password:    "secret123",
	}
	if _, err := svc.Create(ctx, base); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"duplicate email", func(r *CreateUserRequest) { r.Username = "other"; r.PhoneNumber = "555-0101" }},
		{"duplicate username", func(r *CreateUserRequest) { r.Email = "other@example.com"; r.PhoneNumber = "555-0102" }},
		{"duplicate phone", func(r *CreateUserRequest) { r.Email = "third@example.com"; r.Username = "third" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.Create(ctx, req)
			appErr, ok := apperror.As(err)
			if !ok || appErr.StatusCode != 409 {
				t.Fatalf("error = %v, want 409", err)
			}
		})
	}
}

func TestToggleStatusProtectsAdmins(t *testing.T) {
	svc, users, roles, _, _ := newUserFixture()
	ctx := context.Background()

	admin, _ := roles.GetByName(ctx, authz.RoleAdmin)
	adminUser := model.User{
		ID:       uuid.New(),
		Email:    "root@example.com",
		Username: "root",
		IsActive: true,
		Roles:    []model.Role{*admin},
	}
	users.users[adminUser.ID] = adminUser

	_, err := svc.ToggleStatus(ctx, adminUser.ID)
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 409 {
		t.Fatalf("toggle active admin: error = %v, want 409", err)
	}
}

func TestToggleStatusFlips(t *testing.T) {
	svc, users, _, _, _ := newUserFixture()
	ctx := context.Background()

	u := model.User{ID: uuid.New(), Email: "jane@example.com", Username: "jane", IsActive: true}
	users.users[u.ID] = u

	resp, err := svc.ToggleStatus(ctx, u.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if resp.IsActive {
		t.Error("user still active after toggle")
	}

	resp, err = svc.ToggleStatus(ctx, u.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() back error = %v", err)
	}
	if !resp.IsActive {
		t.Error("user still inactive after second toggle")
	}
}

func TestAssignRolesProtectsRootAdmin(t *testing.T) {
	svc, users, roles, _, _ := newUserFixture()
	ctx := context.Background()

	admin, _ := roles.GetByName(ctx, authz.RoleAdmin)
	root := model.User{
		ID:       uuid.New(),
		Email:    "admin@local", // matches SeedAdminEmail in testConfig
		Username: "root",
		IsActive: true,
		Roles:    []model.Role{*admin},
	}
	users.users[root.ID] = root

	_, err := svc.AssignRoles(ctx, root.ID, AssignRolesRequest{Roles: []string{authz.RoleBasic}})
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 409 {
		t.Fatalf("strip admin from root: error = %v, want 409", err)
	}
	if appErr.Message != "Cannot Remove Admin Role From Root Admin User." {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	svc, users, _, _, trails := newUserFixture()
	ctx := context.Background()

	u := model.User{ID: uuid.New(), Email: "jane@example.com", Username: "jane", IsActive: true}
	users.users[u.ID] = u

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	stored := users.users[u.ID]
	if !stored.IsDeleted() {
		t.Error("user not marked deleted")
	}
	if stored.IsActive {
		t.Error("deleted user still active")
	}

	// Marked rows disappear from default reads.
	if _, err := svc.GetByID(ctx, u.ID); err == nil {
		t.Error("deleted user still readable")
	}

	// Storage saw an update; the trail records the logical delete.
	if len(trails.trails) != 1 || trails.trails[0].Type != model.TrailDelete {
		t.Fatalf("trails = %+v, want one Delete entry", trails.trails)
	}
	if !strings.Contains(trails.trails[0].AffectedColumns, "DeletedOn") {
		t.Errorf("affected columns = %q, want DeletedOn", trails.trails[0].AffectedColumns)
	}
}

func TestDeleteAdminUserRejected(t *testing.T) {
	svc, users, roles, _, trails := newUserFixture()
	ctx := context.Background()

	admin, _ := roles.GetByName(ctx, authz.RoleAdmin)
	adminUser := model.User{
		ID:       uuid.New(),
		Email:    "root@example.com",
		Username: "root",
		IsActive: true,
		Roles:    []model.Role{*admin},
	}
	users.users[adminUser.ID] = adminUser

	err := svc.Delete(ctx, adminUser.ID)
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode != 409 {
		t.Fatalf("delete admin: error = %v, want 409", err)
	}
	stored := users.users[adminUser.ID]
	if stored.IsDeleted() {
		t.Error("admin marked deleted despite conflict")
	}
	if len(trails.trails) != 0 {
		t.Error("trail recorded for rejected delete")
	}
}

func TestHasPermissionNormalizes(t *testing.T) {
	svc, users, roles, permissions, _ := newUserFixture()
	ctx := context.Background()

	basic, _ := roles.GetByName(ctx, authz.RoleBasic)
	u := model.User{ID: uuid.New(), Email: "jane@example.com", Username: "jane", IsActive: true, Roles: []model.Role{*basic}}
	users.users[u.ID] = u
	permissions.names[authz.RoleBasic] = []string{"Users.View"}

	tests := []struct {
		name       string
		permission string
		want       bool
	}{
		{"canonical", "Permissions.Users.View", true},
		{"bare", "Users.View", true},
		{"case-insensitive prefix", "PERMISSIONS.Users.View", true},
		{"not granted", "Permissions.Users.Delete", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasPermission(ctx, u.ID, tt.permission)
			if err != nil {
				t.Fatalf("HasPermission() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasPermission(%q) = %v, want %v", tt.permission, got, tt.want)
			}
		})
	}
}

func TestPermissionsAreDistinctAcrossRoles(t *testing.T) {
	svc, users, roles, permissions, _ := newUserFixture()
	ctx := context.Background()

	basic, _ := roles.GetByName(ctx, authz.RoleBasic)
	auditor := model.Role{ID: uuid.New(), Name: "Auditor"}
	roles.roles[auditor.ID] = auditor

	u := model.User{
		ID: uuid.New(), Email: "jane@example.com", Username: "jane", IsActive: true,
		Roles: []model.Role{*basic, auditor},
	}
	users.users[u.ID] = u

	permissions.names[authz.RoleBasic] = []string{"Users.View"}
	permissions.names["Auditor"] = []string{"Users.View", "Roles.View"}

	names, err := svc.Permissions(ctx, u.ID)
	if err != nil {
		t.Fatalf("Permissions() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want two distinct names", names)
	}
}

func TestSearchUsersFilters(t *testing.T) {
	svc, users, _, _, _ := newUserFixture()
	ctx := context.Background()

	active := true
	inactive := false
	users.users[uuid.New()] = model.User{ID: uuid.New(), FirstName: "Jane", Username: "jane", Email: "jane@example.com", IsActive: true}
	users.users[uuid.New()] = model.User{ID: uuid.New(), FirstName: "John", Username: "john", Email: "john@example.com", IsActive: false}

	page, err := svc.Search(ctx, SearchUsersRequest{Keyword: "jane", IsActive: &active}, pagination.Normalize(1, 20))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("active jane: total = %d, want 1", page.TotalCount)
	}

	page, err = svc.Search(ctx, SearchUsersRequest{IsActive: &inactive}, pagination.Normalize(1, 20))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("inactive: total = %d, want 1", page.TotalCount)
	}
}
