// Package auth implements the capability gate guarding aggregation and
// metadata operations: tenant tokens are bound to a single host, admin
// tokens may query across tenants.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken means the caller's proof could not be verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized means the caller's capability does not satisfy the
	// operation's requirement. The guarded operation must not run.
	ErrUnauthorized = errors.New("unauthorized")
)

// Capability roles carried in token claims.
const (
	RoleTenant = "tenant"
	RoleAdmin  = "admin"
)

// DevelopmentSecret signs tokens when no secret is configured. The relay and
// relayctl share it so locally minted tokens validate out of the box. Never
// deploy with it.
const DevelopmentSecret = "hookrelay-dev-secret"

// Claims are the relay's JWT claims: the tenant host the token is bound to
// and the capability roles it proves.
type Claims struct {
	Host  string   `json:"host,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenGenerator mints and validates capability tokens.
type TokenGenerator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenGenerator creates a generator signing with HS256.
func NewTokenGenerator(secret, issuer string, ttl time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate mints a token bound to host with the given roles.
func (tg *TokenGenerator) Generate(host string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Host:  host,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tg.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tg.secret)
}

// Validate parses and verifies a token string, returning its claims.
func (tg *TokenGenerator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tg.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
