package enums

import "fmt"

// OrgRole is the role an organizer user holds within their organization.
type OrgRole string

const (
	OrgRoleOwner OrgRole = "owner"
	OrgRoleAdmin OrgRole = "admin"
	OrgRoleStaff OrgRole = "staff"
)

var validOrgRoles = []OrgRole{
	OrgRoleOwner,
	OrgRoleAdmin,
	OrgRoleStaff,
}

// String implements fmt.Stringer.
func (r OrgRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OrgRole.
func (r OrgRole) IsValid() bool {
	for _, candidate := range validOrgRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOrgRole converts raw input into an OrgRole.
func ParseOrgRole(value string) (OrgRole, error) {
	for _, candidate := range validOrgRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid org role %q", value)
}
