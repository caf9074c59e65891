package jwt

import (
	"errors"
	"net/http"

	"fleet-tracker/internal/domain/user"
)

// Authorize extracts the bearer token from r, validates it and enforces RBAC.
// It runs before a WebSocket upgrade, while a plain HTTP error can still be sent.
func Authorize(r *http.Request, mgr *Manager, allowedRoles ...user.Role) (*Claims, error) {
	raw, err := FromAuthorization(r)
	if err != nil {
		return nil, err
	}

	_, claims, err := mgr.ParseAndValidate(raw)
	if err != nil {
		return nil, err
	}

	if err := RoleAllowed(claims, allowedRoles...); err != nil {
		return nil, err
	}
	return claims, nil
}

// StatusFor maps an Authorize error to an HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, ErrRoleForbidden) {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
