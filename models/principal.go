package models

import (
	"slices"
	"strings"

	"github.com/samber/oops"
)

// Principal is the request-scoped identity resolved from a password check
// or a validated session token. It is never persisted.
type Principal struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Authorities []string `json:"authorities"`
}

// NewPrincipal projects a stored user into a principal.
func NewPrincipal(u *User) *Principal {
	return &Principal{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Authorities: []string{u.Role.Authority()},
	}
}

// PrincipalFromClaims rebuilds a principal from decoded token claims.
// authorities is the comma-joined list carried in the token; every entry
// must name a known role.
func PrincipalFromClaims(id uint, email, name, authorities string) (*Principal, error) {
	if id == 0 || email == "" {
		return nil, oops.Code(CodeUnauthenticated).Errorf("token claims missing identity")
	}

	var (
		role  Role
		perms []string
	)
	for _, a := range strings.Split(authorities, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		r, err := ParseRole(a)
		if err != nil {
			return nil, oops.Code(CodeUnauthenticated).With("authority", a).Errorf("token carries unknown authority")
		}
		if role == "" {
			role = r
		}
		perms = append(perms, r.Authority())
	}
	if role == "" {
		return nil, oops.Code(CodeUnauthenticated).Errorf("token carries no authorities")
	}

	return &Principal{
		ID:          id,
		Email:       email,
		Name:        name,
		Role:        role,
		Authorities: perms,
	}, nil
}

// AuthoritiesClaim joins the authorities for the token payload.
func (p *Principal) AuthoritiesClaim() string {
	return strings.Join(p.Authorities, ",")
}

func (p *Principal) HasAuthority(authority string) bool {
	return p != nil && slices.Contains(p.Authorities, authority)
}

// HasAnyRole reports whether the principal holds the authority of any of the roles.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasAuthority(r.Authority()) {
			return true
		}
	}
	return false
}
