package models

import "fmt"

// Role is the closed set of account roles. Every authorization checkpoint
// switches over all values and denies anything else.
type Role string

const (
	RoleAdmin          Role = "ROLE_ADMIN"
	RoleOrganizer      Role = "ROLE_ORGANIZER"
	RoleOrganizerAdmin Role = "ROLE_ORGANIZER_ADMIN"
	RoleParticipant    Role = "ROLE_PARTICIPANT"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleOrganizer, RoleOrganizerAdmin, RoleParticipant}

// ParseRole maps a wire value to a Role. Older clients send "Organizer" and
// "Participant"; both are accepted.
func ParseRole(s string) (Role, error) {
	switch s {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleOrganizer), "Organizer":
		return RoleOrganizer, nil
	case string(RoleOrganizerAdmin):
		return RoleOrganizerAdmin, nil
	case string(RoleParticipant), "Participant":
		return RoleParticipant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of Roles in its canonical spelling.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleOrganizerAdmin, RoleParticipant:
		return true
	default:
		return false
	}
}

// IsOrganizerClass reports whether r may own events.
func (r Role) IsOrganizerClass() bool {
	switch r {
	case RoleOrganizer, RoleOrganizerAdmin:
		return true
	case RoleAdmin, RoleParticipant:
		return false
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }
