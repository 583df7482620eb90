package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hookrelay-systems/hookrelay/internal/models"
)

// Gate authenticates callers and checks capabilities before guarded
// operations run. It holds no mutable state; the metadata descriptor is
// built once at construction.
type Gate struct {
	tokens   *TokenGenerator
	metadata models.AuthMetadata
}

// NewGate creates a gate validating tokens from the given generator.
func NewGate(tokens *TokenGenerator) *Gate {
	return &Gate{
		tokens: tokens,
		metadata: models.AuthMetadata{
			Scheme:      "bearer",
			TokenFormat: "jwt",
			Header:      "Authorization",
			Issuer:      tokens.issuer,
			Capabilities: []models.CapabilityDescriptor{
				{
					Name:        RoleTenant,
					Description: "query aggregates and metadata for the single host the token is bound to",
					BoundClaim:  "host",
				},
				{
					Name:        RoleAdmin,
					Description: "query aggregates across all tenants and delete events for any tenant",
				},
			},
		},
	}
}

// Authenticate extracts and validates the bearer token from the request.
func (g *Gate) Authenticate(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("%w: missing authorization header", ErrInvalidToken)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}

	return g.tokens.Validate(parts[1])
}

// RequireTenant checks that the claims allow operations scoped to host: a
// tenant token must be bound to that exact host; an admin token passes for
// any host.
func (g *Gate) RequireTenant(claims *Claims, host string) error {
	if claims == nil {
		return ErrUnauthorized
	}
	if claims.HasRole(RoleAdmin) {
		return nil
	}
	if !claims.HasRole(RoleTenant) {
		return fmt.Errorf("%w: tenant capability required", ErrUnauthorized)
	}
	if claims.Host == "" || claims.Host != host {
		return fmt.Errorf("%w: token not bound to host %q", ErrUnauthorized, host)
	}
	return nil
}

// RequireAdmin checks that the claims carry the administrator capability.
func (g *Gate) RequireAdmin(claims *Claims) error {
	if claims == nil || !claims.HasRole(RoleAdmin) {
		return fmt.Errorf("%w: administrator capability required", ErrUnauthorized)
	}
	return nil
}

// Metadata returns the static auth scheme descriptor.
func (g *Gate) Metadata() models.AuthMetadata {
	return g.metadata
}
