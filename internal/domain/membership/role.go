package membership

// Role represents the organizational role granted by an invitation and held
// by a membership.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// roleRanks orders roles for conflict resolution (employee < manager < admin).
var roleRanks = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// Rank returns the comparison rank of the role; unknown roles rank lowest.
func (r Role) Rank() int {
	return roleRanks[r]
}

// IsValid reports whether r is one of the closed role enumeration.
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AllRoles lists the valid role values for validation messages.
func AllRoles() []string {
	return []string{string(RoleEmployee), string(RoleManager), string(RoleAdmin)}
}
