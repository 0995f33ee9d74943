// Package access implements the capability gate: a pure mapping from
// (role, action) to allow or deny.
package access

import "github.com/blogem/admin-console/models"

// Action is something an actor may attempt
type Action string

const (
	ActionView          Action = "view"
	ActionViewSensitive Action = "view_sensitive"
	ActionUpdate        Action = "update"
	ActionRollback      Action = "rollback"
	ActionAssign        Action = "assign"
	ActionChangeStatus  Action = "change_status"
	ActionResolve       Action = "resolve"
	ActionModerate      Action = "moderate"
	ActionRetry         Action = "retry"
	ActionCancel        Action = "cancel"
	ActionViewAudit     Action = "view_audit"
)

// Policy lists the actions granted to each role
type Policy map[models.Role][]Action

// DefaultPolicy is the console's built-in role matrix
func DefaultPolicy() Policy {
	return Policy{
		models.RoleSuperAdmin: {
			ActionView, ActionViewSensitive, ActionUpdate, ActionRollback,
			ActionAssign, ActionChangeStatus, ActionResolve, ActionModerate,
			ActionRetry, ActionCancel, ActionViewAudit,
		},
		models.RoleAdmin: {
			ActionView, ActionUpdate, ActionRollback,
			ActionAssign, ActionChangeStatus, ActionResolve, ActionModerate,
			ActionRetry, ActionCancel, ActionViewAudit,
		},
		models.RoleModerator: {
			ActionView, ActionAssign, ActionChangeStatus, ActionResolve, ActionModerate,
		},
		models.RoleSupport: {ActionView, ActionAssign},
		models.RoleViewer:  {ActionView},
	}
}

// Gate answers capability questions. It is immutable after construction and
// safe for concurrent use.
type Gate struct {
	grants map[models.Role]map[Action]struct{}
}

// NewGate builds a gate from a policy
func NewGate(policy Policy) *Gate {
	grants := make(map[models.Role]map[Action]struct{}, len(policy))
	for role, actions := range policy {
		set := make(map[Action]struct{}, len(actions))
		for _, a := range actions {
			set[a] = struct{}{}
		}
		grants[role] = set
	}
	return &Gate{grants: grants}
}

// Allow reports whether role may perform action. Unknown roles and actions
// are denied.
func (g *Gate) Allow(role models.Role, action Action) bool {
	set, ok := g.grants[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// Actions returns the actions granted to role, in policy order
func (g *Gate) Actions(role models.Role) []Action {
	var out []Action
	for _, a := range allActions {
		if g.Allow(role, a) {
			out = append(out, a)
		}
	}
	return out
}

var allActions = []Action{
	ActionView, ActionViewSensitive, ActionUpdate, ActionRollback,
	ActionAssign, ActionChangeStatus, ActionResolve, ActionModerate,
	ActionRetry, ActionCancel, ActionViewAudit,
}
