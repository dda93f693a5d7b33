package auth

import (
	"strings"

	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/token"
)

// RoleResolver decides the role of a freshly decoded magic-link token.
// Exactly one resolver is active per configuration.
type RoleResolver interface {
	Resolve(claims *token.Claims) string
}

// ClaimRoles trusts the role claim set by the backend. Anything other than
// "admin" is a plain user.
type ClaimRoles struct{}

func (ClaimRoles) Resolve(claims *token.Claims) string {
	if strings.EqualFold(claims.Role(), model.RoleAdmin) {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// AllowListRoles ignores the role claim and makes admins of the listed phones.
type AllowListRoles struct {
	phones map[string]struct{}
}

// NewAllowListRoles builds a resolver from the configured admin phones
func NewAllowListRoles(phones []string) AllowListRoles {
	set := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return AllowListRoles{phones: set}
}

func (a AllowListRoles) Resolve(claims *token.Claims) string {
	if _, ok := a.phones[claims.Phone()]; ok {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// RolesFromConfig returns the resolver selected by role_source
func RolesFromConfig(cfg *config.Config) RoleResolver {
	if cfg.RoleSource == config.RoleSourceAllowList {
		return NewAllowListRoles(cfg.AdminPhones)
	}
	return ClaimRoles{}
}
