package models

import (
	"strings"
	"time"

	"github.com/samber/oops"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AuthorityPrefix is prepended to a role name to form its authority string.
const AuthorityPrefix = "ROLE_"

var roles = map[Role]struct{}{
	RoleUser:  {},
	RoleAdmin: {},
}

// ParseRole accepts either a bare role name or its authority form ("ROLE_USER").
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimPrefix(strings.TrimSpace(s), AuthorityPrefix))
	if _, ok := roles[r]; !ok {
		return "", oops.Code(CodeValidation).With("role", s).Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// Authority maps the role to its permission string, e.g. USER -> ROLE_USER.
func (r Role) Authority() string {
	return AuthorityPrefix + string(r)
}

type User struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Email        string    `json:"email" gorm:"size:191;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	Role         Role      `json:"role" gorm:"size:16;not null;default:'USER'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
