package models

import "time"

type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Session is the authenticated caller of a request. It is built once from the
// bearer token by the auth middleware and is the only place handlers look up
// who is calling and with which privileges.
type Session struct {
	UserID    string    `json:"uid"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	State     string    `json:"state,omitempty"`
	District  string    `json:"district,omitempty"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && (s.Role == RoleAdmin || s.Role == RoleSuperAdmin)
}

func (s *Session) IsSuperAdmin() bool {
	return s != nil && s.Role == RoleSuperAdmin
}

// DisplayName falls back to "Someone" for callers without a name.
func (s *Session) DisplayName() string {
	if s == nil || s.Name == "" {
		return "Someone"
	}
	return s.Name
}

// Scope is the location a dashboard query is limited to. District admins are
// pinned to their own district; super admins see what they ask for.
func (s *Session) Scope(requested LocationFilter) LocationFilter {
	if s.IsSuperAdmin() {
		return requested
	}
	return LocationFilter{State: s.State, District: s.District}
}
