package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/futamarket/market-backend/pkg/security"
)

// HeaderAdminPassword carries the shared admin secret on mutating requests.
const HeaderAdminPassword = "x-admin-password"

// Decision is the outcome of an admin check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// AdminGuard compares claimed passwords against the configured admin secret,
// held either in plain text or as an Argon2id hash.
type AdminGuard struct {
	secret []byte
	hash   string
}

// NewAdminGuard builds a guard for secret. An empty secret denies every claim.
func NewAdminGuard(secret string) *AdminGuard {
	return &AdminGuard{secret: []byte(secret)}
}

// NewAdminGuardFromHash builds a guard that verifies claims against an
// Argon2id hash produced by security.HashPassword.
func NewAdminGuardFromHash(encoded string) (*AdminGuard, error) {
	if !security.IsHash(encoded) {
		return nil, errors.New("admin password hash is not a valid argon2id hash")
	}
	return &AdminGuard{hash: encoded}, nil
}

// Check reports whether claimed matches the admin secret in constant time.
func (g *AdminGuard) Check(claimed string) Decision {
	if g == nil || claimed == "" {
		return Deny
	}
	if g.hash != "" {
		if ok, err := security.VerifyPassword(claimed, g.hash); err != nil || !ok {
			return Deny
		}
		return Allow
	}
	if len(g.secret) == 0 || subtle.ConstantTimeCompare([]byte(claimed), g.secret) != 1 {
		return Deny
	}
	return Allow
}
