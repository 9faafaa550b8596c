package token

import (
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/origon-labs/apiutils/util"
)

// Claims is the decoded, validated payload of a bearer token. It describes
// the authenticated principal and its roles. A Claims value is created per
// request (validation) or per login call (issuance) and never persisted.
type Claims struct {
	gojwt.RegisteredClaims

	// Roles carries the principal's role strings. Development-issued tokens
	// embed these verbatim; nothing validates them server-side.
	Roles []string `json:"roles"`

	// Raw is the encoded token string this Claims value was decoded from.
	Raw string `json:"-"`
}

// UserID returns the principal identifier (the "sub" claim).
func (c *Claims) UserID() string {
	return c.Subject
}

// HasRole reports whether the principal carries the given role.
func (c *Claims) HasRole(role string) bool {
	return util.Contains(c.Roles, role)
}

// ToMap returns a log-safe view of the claims. The raw token is deliberately
// absent.
func (c *Claims) ToMap() map[string]any {
	return map[string]any{
		"user_id": c.Subject,
		"roles":   c.Roles,
	}
}
