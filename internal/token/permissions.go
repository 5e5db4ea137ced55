package token

import "slices"

// CheckPermissions reports whether claims grant permission.
func CheckPermissions(permission string, claims Claims) error {
	perms, ok := claims.Permissions()
	if !ok {
		return newAuthError(KindPermissionsClaimMissing, "", nil)
	}
	if !slices.Contains(perms, permission) {
		return newAuthError(KindPermissionDenied, "", nil)
	}
	return nil
}
