package domain

import "fmt"

// Rule identifies one access-rule kind. Rules are data, not programs: the
// evaluator implements the semantics of this closed set.
type Rule string

const (
	// RuleOwnerOnly permits only the row owner.
	RuleOwnerOnly Rule = "owner-only"
	// RuleOwnerOrTeam permits the row owner or any subject sharing a team
	// with the owner.
	RuleOwnerOrTeam Rule = "owner-or-teammate"
	// RuleTeamMember permits any member of the row's team.
	RuleTeamMember Rule = "team-member"
	// RuleTeamAdmin permits a team admin of the row's team or the row owner
	// (the team creator).
	RuleTeamAdmin Rule = "team-admin"
	// RuleAuthenticated permits any non-anonymous subject.
	RuleAuthenticated Rule = "authenticated"
)

// Valid reports whether r is a known rule kind.
func (r Rule) Valid() bool {
	switch r {
	case RuleOwnerOnly, RuleOwnerOrTeam, RuleTeamMember, RuleTeamAdmin, RuleAuthenticated:
		return true
	}
	return false
}

// RuleSet declares who may perform each operation on one protected resource.
// A rule set must cover all four operations; partial sets are rejected at
// registration, not at first request.
type RuleSet struct {
	Resource       string
	OwnerAttribute string
	TeamOwned      bool
	Select         Rule
	Insert         Rule
	Update         Rule
	Delete         Rule
}

// RuleFor returns the rule declared for op.
func (rs RuleSet) RuleFor(op Operation) Rule {
	switch op {
	case OpSelect:
		return rs.Select
	case OpInsert:
		return rs.Insert
	case OpUpdate:
		return rs.Update
	case OpDelete:
		return rs.Delete
	}
	return ""
}

// Validate checks that the rule set is complete and coherent. Returns an
// IncompletePolicyError describing the first problem found.
func (rs *RuleSet) Validate() error {
	if rs.Resource == "" {
		return ErrIncompletePolicy("", "resource name is required")
	}
	if rs.OwnerAttribute == "" {
		return ErrIncompletePolicy(rs.Resource, "owner attribute is required")
	}
	for _, op := range Operations {
		rule := rs.RuleFor(op)
		if rule == "" {
			return ErrIncompletePolicy(rs.Resource, "no rule declared for %s", op)
		}
		if !rule.Valid() {
			return ErrIncompletePolicy(rs.Resource, "unknown rule %q for %s", rule, op)
		}
		if !rs.TeamOwned && (rule == RuleTeamMember || rule == RuleTeamAdmin) {
			return ErrIncompletePolicy(rs.Resource, "rule %q for %s requires a team-owned resource", rule, op)
		}
	}
	return nil
}

// String renders the rule set for diagnostics.
func (rs RuleSet) String() string {
	kind := "user-owned"
	if rs.TeamOwned {
		kind = "team-owned"
	}
	return fmt.Sprintf("%s (%s, owner=%s) select=%s insert=%s update=%s delete=%s",
		rs.Resource, kind, rs.OwnerAttribute, rs.Select, rs.Insert, rs.Update, rs.Delete)
}

// UserOwnedRuleSet returns the standard rule set for rows owned by an
// individual subject: reads and updates are shared with teammates, inserts
// and deletes are owner-only.
func UserOwnedRuleSet(resource, ownerAttribute string) RuleSet {
	return RuleSet{
		Resource:       resource,
		OwnerAttribute: ownerAttribute,
		Select:         RuleOwnerOrTeam,
		Insert:         RuleOwnerOnly,
		Update:         RuleOwnerOrTeam,
		Delete:         RuleOwnerOnly,
	}
}

// TeamOwnedRuleSet returns the standard rule set for rows whose primary
// subject is a team: any member may read, any authenticated subject may
// create (becoming the implicit owner), and only a team admin or the creator
// may change or remove the team.
func TeamOwnedRuleSet(resource, ownerAttribute string) RuleSet {
	return RuleSet{
		Resource:       resource,
		OwnerAttribute: ownerAttribute,
		TeamOwned:      true,
		Select:         RuleTeamMember,
		Insert:         RuleAuthenticated,
		Update:         RuleTeamAdmin,
		Delete:         RuleTeamAdmin,
	}
}
