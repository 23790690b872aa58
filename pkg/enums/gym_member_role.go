package enums

import "fmt"

// GymMemberRole is the per-location role a staff user holds at a gym.
type GymMemberRole string

const (
	GymMemberRoleManager GymMemberRole = "manager"
	GymMemberRoleStaff   GymMemberRole = "staff"
)

var validGymMemberRoles = []GymMemberRole{
	GymMemberRoleManager,
	GymMemberRoleStaff,
}

// String implements fmt.Stringer.
func (g GymMemberRole) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GymMemberRole.
func (g GymMemberRole) IsValid() bool {
	for _, candidate := range validGymMemberRoles {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGymMemberRole converts raw input into a GymMemberRole.
func ParseGymMemberRole(value string) (GymMemberRole, error) {
	for _, candidate := range validGymMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gym member role %q", value)
}
