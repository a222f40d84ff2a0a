// Package authz implements the policy evaluator and its per-unit membership
// cache over the storage-backed membership facts.
package authz

import (
	"context"

	"rowguard/internal/domain"
)

// Memberships answers team-membership questions through the active unit of
// work's memo. Each fact is fetched from storage at most once per unit;
// failed lookups are never memoized, so a transient storage error does not
// pin a stale answer for the rest of the unit.
type Memberships struct {
	repo domain.MembershipRepository
}

func NewMemberships(repo domain.MembershipRepository) *Memberships {
	return &Memberships{repo: repo}
}

// SameTeam reports whether the two users share at least one team.
func (m *Memberships) SameTeam(ctx context.Context, userA, userB string) (bool, error) {
	memo := domain.MembershipMemoFromContext(ctx)
	if memo != nil {
		if v, ok := memo.SameTeam(userA, userB); ok {
			return v, nil
		}
	}
	v, err := m.repo.SharedTeam(ctx, userA, userB)
	if err != nil {
		return false, domain.ErrMembershipLookup(err, "same-team lookup for (%s, %s)", userA, userB)
	}
	if memo != nil {
		memo.SetSameTeam(userA, userB, v)
	}
	return v, nil
}

// IsTeamMember reports whether the user belongs to the team.
func (m *Memberships) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	memo := domain.MembershipMemoFromContext(ctx)
	if memo != nil {
		if v, ok := memo.TeamMember(teamID, userID); ok {
			return v, nil
		}
	}
	v, err := m.repo.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		return false, domain.ErrMembershipLookup(err, "team-member lookup for (%s, %s)", teamID, userID)
	}
	if memo != nil {
		memo.SetTeamMember(teamID, userID, v)
	}
	return v, nil
}

// IsTeamAdmin reports whether the user holds the admin role in the team.
func (m *Memberships) IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	memo := domain.MembershipMemoFromContext(ctx)
	if memo != nil {
		if v, ok := memo.TeamAdmin(teamID, userID); ok {
			return v, nil
		}
	}
	v, err := m.repo.IsTeamAdmin(ctx, teamID, userID)
	if err != nil {
		return false, domain.ErrMembershipLookup(err, "team-admin lookup for (%s, %s)", teamID, userID)
	}
	if memo != nil {
		memo.SetTeamAdmin(teamID, userID, v)
	}
	return v, nil
}
