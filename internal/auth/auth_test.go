package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahealth/medscheduler/internal/users"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", time.Hour)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.Issue("user-1", users.RoleDoctor)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, users.RoleDoctor, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := testIssuer().Issue("user-1", users.RolePatient)
	require.NoError(t, err)

	other := NewTokenIssuer("different-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := testIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("user-1", users.RolePatient)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	handler := RequireAuth(testIssuer())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthPassesClaims(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.Issue("user-9", users.RoleAdmin)
	require.NoError(t, err)

	var seen *Claims
	handler := RequireAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "user-9", seen.Subject)
	assert.Equal(t, users.RoleAdmin, seen.Role)
}

func TestRequireRole(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.Issue("user-2", users.RolePatient)
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	chain := RequireAuth(issuer)(RequireRole(users.RoleAdmin)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	chain = RequireAuth(issuer)(RequireRole(users.RolePatient, users.RoleAdmin)(inner))
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
