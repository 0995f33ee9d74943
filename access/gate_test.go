package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogem/admin-console/models"
)

func TestDefaultPolicy(t *testing.T) {
	gate := NewGate(DefaultPolicy())

	tests := []struct {
		role   models.Role
		action Action
		want   bool
	}{
		{models.RoleSuperAdmin, ActionViewSensitive, true},
		{models.RoleAdmin, ActionViewSensitive, false},
		{models.RoleAdmin, ActionUpdate, true},
		{models.RoleAdmin, ActionRollback, true},
		{models.RoleModerator, ActionUpdate, false},
		{models.RoleModerator, ActionModerate, true},
		{models.RoleModerator, ActionResolve, true},
		{models.RoleModerator, ActionRetry, false},
		{models.RoleSupport, ActionAssign, true},
		{models.RoleSupport, ActionResolve, false},
		{models.RoleViewer, ActionView, true},
		{models.RoleViewer, ActionAssign, false},
		{models.RoleViewer, ActionViewAudit, false},
		{"unknown", ActionView, false},
		{models.RoleSuperAdmin, "delete", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Allow(tt.role, tt.action))
		})
	}
}

func TestActions(t *testing.T) {
	gate := NewGate(DefaultPolicy())

	assert.Equal(t, []Action{ActionView}, gate.Actions(models.RoleViewer))
	assert.Equal(t, []Action{ActionView, ActionAssign}, gate.Actions(models.RoleSupport))
	assert.Len(t, gate.Actions(models.RoleSuperAdmin), len(allActions))
	assert.Empty(t, gate.Actions("ghost"))
}
