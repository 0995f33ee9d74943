package models

// Role is an administrator role as supplied by the identity provider
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleSupport    Role = "support"
	RoleViewer     Role = "viewer"
)

// Roles lists every role known to the console
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleModerator, RoleSupport, RoleViewer}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Actor identifies who is performing an operation. It is threaded explicitly
// through every service call.
type Actor struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Authenticated reports whether the actor carries an identity and a known role
func (a Actor) Authenticated() bool {
	return a.ID != "" && a.Role.IsValid()
}
