package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/user"
)

func TestAuthorize_HeaderAndQuery(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	tok, _, err := mgr.IssueUserToken("viewer-1", user.RoleDashboard)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	claims, err := Authorize(r, mgr, user.RoleDashboard, user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "viewer-1", claims.Subject)

	r = httptest.NewRequest(http.MethodGet, "/ws?Authorization="+tok, nil)
	_, err = Authorize(r, mgr, user.RoleDashboard)
	assert.NoError(t, err)
}

func TestAuthorize_Rejections(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)
	dash, _, _ := mgr.IssueUserToken("viewer-1", user.RoleDashboard)
	forged, _, _ := other.IssueUserToken("viewer-1", user.RoleAdmin)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	_, err := Authorize(r, mgr, user.RoleDashboard)
	assert.ErrorIs(t, err, ErrNoAuthHeader)
	assert.Equal(t, http.StatusUnauthorized, StatusFor(err))

	r.Header.Set("Authorization", "Bearer "+forged)
	_, err = Authorize(r, mgr, user.RoleAdmin)
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusFor(err))

	r.Header.Set("Authorization", "Bearer "+dash)
	_, err = Authorize(r, mgr, user.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleForbidden)
	assert.Equal(t, http.StatusForbidden, StatusFor(err))
}

func TestAuthorize_ExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)
	tok, _, err := mgr.IssueUserToken("viewer-1", user.RoleDashboard)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	_, err = Authorize(r, mgr, user.RoleDashboard)
	assert.Error(t, err)
}

func TestIssueUserToken_RejectsUnknownRole(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	_, _, err := mgr.IssueUserToken("x", user.Role("DRIVER"))
	assert.Error(t, err)
}

func TestAuthMiddleware_InjectsClaims(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	tok, _, err := mgr.IssueUserToken("ops-1", user.RoleAdmin)
	require.NoError(t, err)

	var seen *Claims
	h := AuthMiddlewareFunc(mgr, user.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		seen = RequireClaims(r)
	})

	r := httptest.NewRequest(http.MethodPatch, "/vehicles/TRK001", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	h(httptest.NewRecorder(), r)
	require.NotNil(t, seen)
	assert.Equal(t, "ops-1", seen.Subject)

	assert.Nil(t, RequireClaims(httptest.NewRequest(http.MethodGet, "/", nil)))
}
