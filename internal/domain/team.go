package domain

import "time"

// Team roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Team is a shared ownership unit. Its creator is the implicit owner.
type Team struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// TeamMembership links a user to a team with a role. The engine only reads
// membership facts; the storage layer owns them.
type TeamMembership struct {
	TeamID    string
	UserID    string
	Role      string
	CreatedAt time.Time
}

// CreateTeamRequest holds parameters for creating a new team.
type CreateTeamRequest struct {
	Name string
}

// Validate checks that the request is well-formed.
func (r *CreateTeamRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("team name is required")
	}
	return nil
}

// AddTeamMemberRequest holds parameters for adding a member to a team.
type AddTeamMemberRequest struct {
	TeamID string
	UserID string
	Role   string
}

// Validate checks that the request is well-formed.
func (r *AddTeamMemberRequest) Validate() error {
	if r.TeamID == "" {
		return ErrValidation("team_id is required")
	}
	if r.UserID == "" {
		return ErrValidation("user_id is required")
	}
	if r.Role == "" {
		r.Role = RoleMember
	}
	if r.Role != RoleAdmin && r.Role != RoleMember {
		return ErrValidation("role must be 'admin' or 'member'")
	}
	return nil
}

// MembershipMemo holds the membership facts already looked up within one
// unit of work. It is owned by exactly one unit and is not safe for
// concurrent use; the scope that created it tears it down.
type MembershipMemo struct {
	sameTeam   map[TeamPairKey]bool
	teamMember map[TeamRoleKey]bool
	teamAdmin  map[TeamRoleKey]bool
	lookups    int
}

// TeamPairKey is the normalized, order-independent key for a user pair.
type TeamPairKey struct {
	Lo, Hi string
}

// PairKey normalizes (a, b) so that SameTeam(a, b) and SameTeam(b, a) share
// one cache slot.
func PairKey(a, b string) TeamPairKey {
	if a > b {
		a, b = b, a
	}
	return TeamPairKey{Lo: a, Hi: b}
}

// TeamRoleKey keys an is-team-admin fact.
type TeamRoleKey struct {
	TeamID string
	UserID string
}

func newMembershipMemo() *MembershipMemo {
	return &MembershipMemo{
		sameTeam:   make(map[TeamPairKey]bool),
		teamMember: make(map[TeamRoleKey]bool),
		teamAdmin:  make(map[TeamRoleKey]bool),
	}
}

// SameTeam returns the memoized answer for the pair, if present.
func (m *MembershipMemo) SameTeam(a, b string) (bool, bool) {
	v, ok := m.sameTeam[PairKey(a, b)]
	return v, ok
}

// SetSameTeam memoizes the answer for the pair.
func (m *MembershipMemo) SetSameTeam(a, b string, v bool) {
	m.sameTeam[PairKey(a, b)] = v
	m.lookups++
}

// TeamMember returns the memoized answer for (teamID, userID), if present.
func (m *MembershipMemo) TeamMember(teamID, userID string) (bool, bool) {
	v, ok := m.teamMember[TeamRoleKey{TeamID: teamID, UserID: userID}]
	return v, ok
}

// SetTeamMember memoizes the answer for (teamID, userID).
func (m *MembershipMemo) SetTeamMember(teamID, userID string, v bool) {
	m.teamMember[TeamRoleKey{TeamID: teamID, UserID: userID}] = v
	m.lookups++
}

// TeamAdmin returns the memoized answer for (teamID, userID), if present.
func (m *MembershipMemo) TeamAdmin(teamID, userID string) (bool, bool) {
	v, ok := m.teamAdmin[TeamRoleKey{TeamID: teamID, UserID: userID}]
	return v, ok
}

// SetTeamAdmin memoizes the answer for (teamID, userID).
func (m *MembershipMemo) SetTeamAdmin(teamID, userID string, v bool) {
	m.teamAdmin[TeamRoleKey{TeamID: teamID, UserID: userID}] = v
	m.lookups++
}

// Lookups reports how many facts were stored, for observability.
func (m *MembershipMemo) Lookups() int { return m.lookups }
