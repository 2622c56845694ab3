package enum

// Role represents the access level of a bot user.
type Role string

const (
	// RoleAdmin is the single configured user allowed to assign tasks and view analytics.
	RoleAdmin Role = "admin"
	// RoleManager owns and completes tasks.
	RoleManager Role = "manager"
)

// String returns the stored representation.
func (r Role) String() string {
	return string(r)
}
