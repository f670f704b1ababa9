package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleMember.AtLeast(RoleViewer))
	assert.False(t, RoleViewer.AtLeast(RoleMember))
	assert.False(t, RoleMember.AtLeast(RoleAdmin))

	// Unknown roles rank below everything.
	assert.False(t, OrgRole("SUPERUSER").AtLeast(RoleViewer))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, OrgRole("GUEST").Valid())
}
