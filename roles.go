package session

// Role is the closed set of account roles. It is fixed when the profile is
// created and never changes through this package.
type Role string

const (
	// RoleStudent can enroll in and follow courses.
	RoleStudent Role = "student"
	// RoleTeacher can author courses and grade submissions.
	RoleTeacher Role = "teacher"
)

// Route is a navigation destination emitted after sign-in/sign-out.
type Route string

const (
	RouteHome             Route = "/"
	RouteStudentDashboard Route = "/student-dashboard"
	RouteTeacherDashboard Route = "/teacher-dashboard"
)

// IsValid checks the role against the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Dashboard maps the role to its post-login destination.
func (r Role) Dashboard() Route {
	switch r {
	case RoleTeacher:
		return RouteTeacherDashboard
	case RoleStudent:
		return RouteStudentDashboard
	default:
		return RouteHome
	}
}

// AllRoles returns the closed role set.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleTeacher}
}

// ParseRole safely parses a string into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.IsValid()
}
