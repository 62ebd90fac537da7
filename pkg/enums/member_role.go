package enums

import "fmt"

// MemberRole is the role a user holds, globally or within a store.
type MemberRole string

const (
	MemberRoleCashier    MemberRole = "cashier"
	MemberRoleAdmin      MemberRole = "admin"
	MemberRoleSuperAdmin MemberRole = "superadmin"
)

var validMemberRoles = []MemberRole{
	MemberRoleCashier,
	MemberRoleAdmin,
	MemberRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r MemberRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known MemberRole.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManageStore reports whether the role may mutate catalog and settings.
func (r MemberRole) CanManageStore() bool {
	return r == MemberRoleAdmin || r == MemberRoleSuperAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
