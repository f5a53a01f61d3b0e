package authz

// Actions an operation on a function can be classified as.
const (
	ActionView   = "View"
	ActionSearch = "Search"
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
	ActionImport = "Import"
	ActionExport = "Export"
	ActionClean  = "Clean"
)

// AllActions lists every known action in display order.
var AllActions = []string{
	ActionView,
	ActionSearch,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionImport,
	ActionExport,
	ActionClean,
}

// Functions are the modules/feature areas permissions are scoped to.
const (
	FunctionDashboard  = "Dashboard"
	FunctionUsers      = "Users"
	FunctionRoles      = "Roles"
	FunctionProducts   = "Products"
	FunctionCategories = "Categories"
)

// AllFunctions lists every seeded function.
var AllFunctions = []string{
	FunctionDashboard,
	FunctionUsers,
	FunctionRoles,
	FunctionProducts,
	FunctionCategories,
}

// Built-in role names. Admin implicitly holds every permission and Basic is
// seeded with View+Search only; neither can be renamed or deleted.
const (
	RoleAdmin = "Admin"
	RoleBasic = "Basic"
)

// DefaultRoles lists the protected built-in roles.
var DefaultRoles = []string{RoleAdmin, RoleBasic}

// IsDefaultRole reports whether name is one of the protected built-in roles.
func IsDefaultRole(name string) bool {
	for _, r := range DefaultRoles {
		if r == name {
			return true
		}
	}
	return false
}
