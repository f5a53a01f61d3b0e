package authz

import (
	"fmt"
	"strings"
)

// Prefix marks a policy string as a permission check. Any requirement whose
// name starts with this prefix is resolved dynamically instead of being a
// pre-registered policy.
const Prefix = "Permissions"

// PermissionName builds the canonical policy identifier for a function/action
// pair: "Permissions.{Function}.{Action}".
func PermissionName(function, action string) string {
	return fmt.Sprintf("%s.%s.%s", Prefix, function, action)
}

// IsPermissionPolicy reports whether the policy name should be treated as a
// dynamic permission check.
func IsPermissionPolicy(policyName string) bool {
	return len(policyName) >= len(Prefix) &&
		strings.EqualFold(policyName[:len(Prefix)], Prefix)
}

// Normalize strips the optional "Permissions." prefix, reducing a policy name
// to the stored "Function.Action" form. Already-normalized input is returned
// unchanged, so Normalize(Normalize(p)) == Normalize(p).
func Normalize(permission string) string {
	const withDot = Prefix + "."
	if len(permission) >= len(withDot) && strings.EqualFold(permission[:len(withDot)], withDot) {
		return permission[len(withDot):]
	}
	return permission
}

// PermissionsForFunction enumerates the canonical permission names of every
// known action for the given function.
func PermissionsForFunction(function string) []string {
	return PermissionsForFunctionActions(function, AllActions)
}

// PermissionsForFunctionActions enumerates permission names for a caller
// supplied subset of actions.
func PermissionsForFunctionActions(function string, actions []string) []string {
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, PermissionName(function, action))
	}
	return names
}
