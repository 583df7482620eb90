package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*Gate, *TokenGenerator) {
	t.Helper()
	tg := NewTokenGenerator("test-secret", "hookrelay-test", time.Hour)
	return NewGate(tg), tg
}

func TestTokenGenerator_RoundTrip(t *testing.T) {
	tg := NewTokenGenerator("test-secret", "hookrelay-test", time.Hour)

	token, err := tg.Generate("shop1.example", []string{RoleTenant})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tg.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "shop1.example", claims.Host)
	assert.True(t, claims.HasRole(RoleTenant))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.Equal(t, "hookrelay-test", claims.Issuer)
}

func TestTokenGenerator_RejectsWrongSecret(t *testing.T) {
	tg := NewTokenGenerator("test-secret", "hookrelay-test", time.Hour)
	other := NewTokenGenerator("other-secret", "hookrelay-test", time.Hour)

	token, err := tg.Generate("shop1.example", []string{RoleTenant})
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGenerator_RejectsExpired(t *testing.T) {
	tg := NewTokenGenerator("test-secret", "hookrelay-test", -time.Minute)

	token, err := tg.Generate("shop1.example", []string{RoleTenant})
	require.NoError(t, err)

	_, err = tg.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGate_Authenticate(t *testing.T) {
	gate, tg := newTestGate(t)

	token, err := tg.Generate("shop1.example", []string{RoleTenant})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/count-webhooks", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	claims, err := gate.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "shop1.example", claims.Host)
}

func TestGate_Authenticate_Missing(t *testing.T) {
	gate, _ := newTestGate(t)

	r := httptest.NewRequest(http.MethodGet, "/count-webhooks", nil)
	_, err := gate.Authenticate(r)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = gate.Authenticate(r)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGate_RequireTenant_BoundHostOnly(t *testing.T) {
	gate, tg := newTestGate(t)

	token, err := tg.Generate("a.example", []string{RoleTenant})
	require.NoError(t, err)
	claims, err := tg.Validate(token)
	require.NoError(t, err)

	assert.NoError(t, gate.RequireTenant(claims, "a.example"))

	// A tenant token must not reach another tenant's data.
	err = gate.RequireTenant(claims, "b.example")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGate_RequireTenant_AdminPassesAnyHost(t *testing.T) {
	gate, tg := newTestGate(t)

	token, err := tg.Generate("", []string{RoleAdmin})
	require.NoError(t, err)
	claims, err := tg.Validate(token)
	require.NoError(t, err)

	assert.NoError(t, gate.RequireTenant(claims, "a.example"))
	assert.NoError(t, gate.RequireTenant(claims, "b.example"))
}

func TestGate_RequireAdmin(t *testing.T) {
	gate, tg := newTestGate(t)

	adminToken, err := tg.Generate("", []string{RoleAdmin})
	require.NoError(t, err)
	adminClaims, err := tg.Validate(adminToken)
	require.NoError(t, err)
	assert.NoError(t, gate.RequireAdmin(adminClaims))

	tenantToken, err := tg.Generate("a.example", []string{RoleTenant})
	require.NoError(t, err)
	tenantClaims, err := tg.Validate(tenantToken)
	require.NoError(t, err)
	assert.ErrorIs(t, gate.RequireAdmin(tenantClaims), ErrUnauthorized)

	assert.ErrorIs(t, gate.RequireAdmin(nil), ErrUnauthorized)
}

func TestGate_Metadata(t *testing.T) {
	gate, _ := newTestGate(t)

	md := gate.Metadata()
	assert.Equal(t, "bearer", md.Scheme)
	assert.Equal(t, "jwt", md.TokenFormat)
	assert.Equal(t, "hookrelay-test", md.Issuer)
	require.Len(t, md.Capabilities, 2)
	assert.Equal(t, RoleTenant, md.Capabilities[0].Name)
	assert.Equal(t, "host", md.Capabilities[0].BoundClaim)
	assert.Equal(t, RoleAdmin, md.Capabilities[1].Name)
}
