package service

import (
	"context"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. Each stores value copies so tests observe only
// what Save/Create actually persisted.

type fakeUserRepo struct {
	users map[uuid.UUID]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uuid.UUID]model.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Save(_ context.Context, user *model.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok && !u.IsDeleted() {
		copy := u
		return &copy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && !u.IsDeleted() {
			copy := u
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username && !u.IsDeleted() {
			copy := u
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ExistsWithEmail(_ context.Context, email string, exceptID uuid.UUID) (bool, error) {
	for id, u := range f.users {
		if id != exceptID && strings.EqualFold(u.Email, email) && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsWithUsername(_ context.Context, username string, exceptID uuid.UUID) (bool, error) {
	for id, u := range f.users {
		if id != exceptID && u.Username == username && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsWithPhone(_ context.Context, phone string, exceptID uuid.UUID) (bool, error) {
	for id, u := range f.users {
		if id != exceptID && u.PhoneNumber == phone && !u.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Search(_ context.Context, filter repository.UserSearchFilter) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		if u.IsDeleted() {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.Keyword != "" {
			kw := strings.ToLower(filter.Keyword)
			hay := strings.ToLower(u.FirstName + " " + u.LastName + " " + u.Username + " " + u.Email)
			if !strings.Contains(hay, kw) {
				continue
			}
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ReplaceRoles(_ context.Context, user *model.User, roles []model.Role) error {
	u := f.users[user.ID]
	u.Roles = roles
	f.users[user.ID] = u
	return nil
}

// Delete mirrors the store contract: the hard-delete intent becomes a
// timestamped mark plus a deactivation.
func (f *fakeUserRepo) Delete(_ context.Context, user *model.User) error {
	user.MarkDeleted(uuid.Nil, time.Now().UTC())
	user.Deactivate()
	f.users[user.ID] = *user
	return nil
}

type fakeRoleRepo struct {
	roles     map[uuid.UUID]model.Role
	userCount map[uuid.UUID]int64
}

func newFakeRoleRepo(roles ...model.Role) *fakeRoleRepo {
	repo := &fakeRoleRepo{roles: map[uuid.UUID]model.Role{}, userCount: map[uuid.UUID]int64{}}
	for _, r := range roles {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		repo.roles[r.ID] = r
	}
	return repo
}

func (f *fakeRoleRepo) List(_ context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	if r, ok := f.roles[id]; ok {
		copy := r
		return &copy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*model.Role, error) {
	for _, r := range f.roles {
		if strings.EqualFold(r.Name, name) {
			copy := r
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) ExistsWithName(_ context.Context, name string, exceptID uuid.UUID) (bool, error) {
	for id, r := range f.roles {
		if id != exceptID && strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoleRepo) Create(_ context.Context, role *model.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeRoleRepo) Save(_ context.Context, role *model.Role) error {
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, role *model.Role) error {
	delete(f.roles, role.ID)
	return nil
}

func (f *fakeRoleRepo) CountUsers(_ context.Context, roleID uuid.UUID) (int64, error) {
	return f.userCount[roleID], nil
}

type fakePermissionRepo struct {
	grants map[uuid.UUID][]model.Permission
	// names maps role name to granted "Function.Action" strings
	names map[string][]string
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{
		grants: map[uuid.UUID][]model.Permission{},
		names:  map[string][]string{},
	}
}

func (f *fakePermissionRepo) ListByRole(_ context.Context, roleID uuid.UUID) ([]model.Permission, error) {
	return f.grants[roleID], nil
}

func (f *fakePermissionRepo) ReplaceForRole(_ context.Context, roleID uuid.UUID, grants []model.Permission) error {
	f.grants[roleID] = grants
	return nil
}

func (f *fakePermissionRepo) DeleteByRole(_ context.Context, roleID uuid.UUID) error {
	delete(f.grants, roleID)
	return nil
}

func (f *fakePermissionRepo) ListNamesForRoles(_ context.Context, roleNames []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, role := range roleNames {
		for _, name := range f.names[role] {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (f *fakePermissionRepo) ExistsForFunction(_ context.Context, functionID uuid.UUID) (bool, error) {
	for _, grants := range f.grants {
		for _, g := range grants {
			if g.FunctionID == functionID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeFunctionRepo struct {
	functions map[uuid.UUID]model.Function
	actions   []model.Action
	links     map[uuid.UUID][]model.ActionInFunction
}

func newFakeFunctionRepo(functions ...model.Function) *fakeFunctionRepo {
	repo := &fakeFunctionRepo{
		functions: map[uuid.UUID]model.Function{},
		links:     map[uuid.UUID][]model.ActionInFunction{},
	}
	for _, fn := range functions {
		if fn.ID == uuid.Nil {
			fn.ID = uuid.New()
		}
		repo.functions[fn.ID] = fn
	}
	return repo
}

func (f *fakeFunctionRepo) List(_ context.Context) ([]model.Function, error) {
	out := make([]model.Function, 0, len(f.functions))
	for _, fn := range f.functions {
		out = append(out, fn)
	}
	return out, nil
}

func (f *fakeFunctionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Function, error) {
	if fn, ok := f.functions[id]; ok {
		copy := fn
		return &copy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFunctionRepo) Create(_ context.Context, fn *model.Function) error {
	if fn.ID == uuid.Nil {
		fn.ID = uuid.New()
	}
	f.functions[fn.ID] = *fn
	return nil
}

func (f *fakeFunctionRepo) Save(_ context.Context, fn *model.Function) error {
	f.functions[fn.ID] = *fn
	return nil
}

func (f *fakeFunctionRepo) Delete(_ context.Context, fn *model.Function) error {
	delete(f.functions, fn.ID)
	return nil
}

func (f *fakeFunctionRepo) ListActions(_ context.Context) ([]model.Action, error) {
	return f.actions, nil
}

func (f *fakeFunctionRepo) ListLinks(_ context.Context, functionID uuid.UUID) ([]model.ActionInFunction, error) {
	return f.links[functionID], nil
}

func (f *fakeFunctionRepo) AddLink(_ context.Context, functionID, actionID uuid.UUID) error {
	f.links[functionID] = append(f.links[functionID], model.ActionInFunction{
		FunctionID: functionID,
		ActionID:   actionID,
	})
	return nil
}

func (f *fakeFunctionRepo) RemoveLink(_ context.Context, functionID, actionID uuid.UUID) error {
	links := f.links[functionID]
	out := links[:0]
	for _, l := range links {
		if l.ActionID != actionID {
			out = append(out, l)
		}
	}
	f.links[functionID] = out
	return nil
}

func (f *fakeFunctionRepo) DeleteLinks(_ context.Context, functionID uuid.UUID) error {
	delete(f.links, functionID)
	return nil
}

type fakeTrailRepo struct {
	trails []model.Trail
}

func (f *fakeTrailRepo) Append(_ context.Context, trails []model.Trail) error {
	f.trails = append(f.trails, trails...)
	return nil
}

func (f *fakeTrailRepo) Search(_ context.Context, filter repository.TrailFilter) ([]model.Trail, int64, error) {
	var out []model.Trail
	for _, t := range f.trails {
		if filter.UserID != uuid.Nil && t.UserID != filter.UserID {
			continue
		}
		if filter.TableName != "" && t.TableName != filter.TableName {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

// fakeTxManager runs the function directly; there is no transaction to
// inject.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
