package enums

import "fmt"

// Role is the access level attached to a user account.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var validRoles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	for _, valid := range validRoles {
		if r == valid {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role grants the privileges of the required one.
func (r Role) AtLeast(required Role) bool {
	rank := map[Role]int{RoleUser: 0, RoleAdmin: 1, RoleSuperAdmin: 2}
	return rank[r] >= rank[required]
}

func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", raw)
	}
	return role, nil
}
