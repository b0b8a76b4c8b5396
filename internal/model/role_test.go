package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"client", "employee", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, role.String())
		assert.True(t, role.Valid())
	}
}

func TestParseRole_Unknown(t *testing.T) {
	for _, invalid := range []string{"", "superadmin", "Client", "CLIENT", "member"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q should be rejected", invalid)
	}
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleAdmin.In(RoleEmployee, RoleAdmin))
	assert.False(t, RoleClient.In(RoleEmployee, RoleAdmin))
	assert.False(t, RoleClient.In())
}
