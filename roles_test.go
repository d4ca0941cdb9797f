package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	session "github.com/edustack/go-session"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, session.RoleStudent.IsValid())
	assert.True(t, session.RoleTeacher.IsValid())
	assert.False(t, session.Role("admin").IsValid())
	assert.False(t, session.Role("").IsValid())
}

func TestRoleDashboard(t *testing.T) {
	assert.Equal(t, session.RouteStudentDashboard, session.RoleStudent.Dashboard())
	assert.Equal(t, session.RouteTeacherDashboard, session.RoleTeacher.Dashboard())
	assert.Equal(t, session.RouteHome, session.Role("admin").Dashboard())
}

func TestParseRole(t *testing.T) {
	role, ok := session.ParseRole("teacher")
	assert.True(t, ok)
	assert.Equal(t, session.RoleTeacher, role)

	role, ok = session.ParseRole("student")
	assert.True(t, ok)
	assert.Equal(t, session.RoleStudent, role)

	_, ok = session.ParseRole("principal")
	assert.False(t, ok)
}
