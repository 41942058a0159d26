// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RoleAdmin is the substring that marks a role as administrative.
const RoleAdmin = "admin"

// Role is reference data owned by the backend and attached to an identity.
type Role struct {
	ID        int    `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

// Roles is the role collection of an identity.
// The backend occasionally serializes a single role as a bare object; decoding
// normalizes both shapes into a slice so consumers never see anything else.
type Roles []Role

// UnmarshalJSON accepts an array of roles, a single role object, or null.
func (r *Roles) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Roles{}
		return nil
	}

	if trimmed[0] == '{' {
		var single Role
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*r = Roles{single}
		return nil
	}

	var many []Role
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	if many == nil {
		many = []Role{}
	}
	*r = Roles(many)
	return nil
}

// Names returns the role names in order.
func (r Roles) Names() []string {
	out := make([]string, 0, len(r))
	for _, role := range r {
		out = append(out, role.Nome)
	}
	return out
}

// Identity is the authenticated subject held by the session.
// ID 0 and an empty Token describe the anonymous identity.
// There is deliberately no password field: credentials never outlive the login request.
type Identity struct {
	ID      int    `json:"id"`
	Nome    string `json:"nome"`
	Usuario string `json:"usuario"`
	Foto    string `json:"foto"`
	Token   string `json:"token"`
	Roles   Roles  `json:"roles"`
}

// Anonymous returns the empty identity.
func Anonymous() Identity {
	return Identity{Roles: Roles{}}
}

// IsAnonymous reports whether the identity carries no session.
func (i Identity) IsAnonymous() bool {
	return i.ID == 0 && !IsAuthenticated(i.Token)
}

// Credentials is the login request payload.
type Credentials struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// Snapshot is the persisted form of a session.
// IsAdmin and IsAuthenticated are placeholders for fast paint only; they are
// recomputed from Usuario whenever a snapshot is loaded.
type Snapshot struct {
	Usuario         Identity `json:"usuario"`
	IsAdmin         bool     `json:"isAdmin"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}

// State is the in-memory view of the session exposed to consumers.
type State struct {
	Identity        Identity `json:"usuario"`
	Loading         bool     `json:"loading"`
	IsAdmin         bool     `json:"isAdmin"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}

// NewState derives the session flags from identity.
func NewState(identity Identity) State {
	return State{
		Identity:        identity,
		IsAdmin:         IsAdmin(identity.Roles),
		IsAuthenticated: IsAuthenticated(identity.Token),
	}
}

// SnapshotOf builds the persisted record for identity.
func SnapshotOf(identity Identity) Snapshot {
	st := NewState(identity)
	return Snapshot{
		Usuario:         st.Identity,
		IsAdmin:         st.IsAdmin,
		IsAuthenticated: st.IsAuthenticated,
	}
}

// IsAuthenticated reports whether token is a non-empty, non-whitespace string.
func IsAuthenticated(token string) bool {
	return strings.TrimSpace(token) != ""
}

// IsAdmin reports whether any role name contains "admin", ignoring case.
// This is a substring match on purpose: "Administrador" and "admin_readonly" both qualify.
func IsAdmin(roles Roles) bool {
	for _, role := range roles {
		if strings.Contains(strings.ToLower(role.Nome), RoleAdmin) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether identity holds a role whose name equals one of required.
// Unlike IsAdmin the comparison is exact.
func HasAnyRole(identity Identity, required ...string) bool {
	for _, role := range identity.Roles {
		for _, name := range required {
			if role.Nome == name {
				return true
			}
		}
	}
	return false
}

const bearerScheme = "bearer "

// BearerToken returns token without a leading "Bearer " scheme marker.
func BearerToken(token string) string {
	t := strings.TrimSpace(token)
	if len(t) >= len(bearerScheme) && strings.EqualFold(t[:len(bearerScheme)], bearerScheme) {
		t = strings.TrimSpace(t[len(bearerScheme):])
	}
	return t
}
