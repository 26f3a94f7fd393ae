package services

import (
	"fmt"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/events"
)

// Scope is how much of the event list a role may see.
type Scope string

const (
	ScopeOwn           Scope = "own"
	ScopeParticipating Scope = "participating"
	ScopeAll           Scope = "all"
)

// ListingPolicy maps each role to its event listing scope. A role without an
// entry may not list events.
type ListingPolicy map[models.Role]Scope

func DefaultListingPolicy() ListingPolicy {
	return ListingPolicy{
		models.RoleAdmin:          ScopeAll,
		models.RoleOrganizer:      ScopeOwn,
		models.RoleOrganizerAdmin: ScopeOwn,
		models.RoleParticipant:    ScopeParticipating,
	}
}

// ParseListingPolicy overlays overrides (role name -> scope name) on the
// default policy. Role names accept the same spellings as models.ParseRole.
func ParseListingPolicy(overrides map[string]string) (ListingPolicy, error) {
	p := DefaultListingPolicy()
	for rawRole, rawScope := range overrides {
		role, err := models.ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		switch sc := Scope(rawScope); sc {
		case ScopeOwn, ScopeParticipating, ScopeAll:
			p[role] = sc
		default:
			return nil, fmt.Errorf("unknown listing scope %q for %s", rawScope, role)
		}
	}
	return p, nil
}

// Filter turns the requester's scope into a repository filter.
func (p ListingPolicy) Filter(id models.Identity) (events.Filter, error) {
	scope, ok := p[id.Role]
	if !ok {
		return events.Filter{}, common.ErrAccessDenied
	}

	switch scope {
	case ScopeAll:
		return events.Filter{}, nil
	case ScopeOwn:
		return events.Filter{OrganizerID: id.Subject}, nil
	case ScopeParticipating:
		return events.Filter{ParticipantID: id.Subject}, nil
	default:
		return events.Filter{}, common.ErrAccessDenied
	}
}
