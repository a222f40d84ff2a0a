package domain

// Operation is one kind of storage access checked by the evaluator.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Operations lists all checked operations in evaluation order.
var Operations = []Operation{OpSelect, OpInsert, OpUpdate, OpDelete}

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OpSelect, OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Outcome is the result kind of an evaluation.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Reason codes attached to decisions. They are recorded in audit entries and
// operational logs only; the calling layer must never echo them to clients.
const (
	ReasonAdminOverride       = "admin-override"
	ReasonNoIdentity          = "no-identity"
	ReasonOwner               = "owner"
	ReasonTeammate            = "teammate"
	ReasonTeamMember          = "team-member"
	ReasonTeamAdmin           = "team-admin"
	ReasonAuthenticated       = "authenticated"
	ReasonNotOwnerOnInsert    = "not-owner-on-insert"
	ReasonNotOwnerOnDelete    = "not-owner-on-delete"
	ReasonNotOwnerNotTeammate = "not-owner-not-teammate"
	ReasonNotTeamMember       = "not-team-member"
	ReasonNotTeamAdmin        = "not-team-admin"
)

// Row is the minimal view of a storage row the evaluator needs: the value of
// the resource's owner attribute, plus the team ID and row ID where the
// caller has them. TeamID is required for team-owned resources.
type Row struct {
	OwnerID string
	TeamID  string
	ID      string
}

// Decision is the result of evaluating one (actor, resource, operation, row).
// It is ephemeral: a pure function of its inputs and the membership facts,
// persisted only through the audit log on deny or admin override.
type Decision struct {
	Actor      string
	Resource   string
	Operation  Operation
	RowOwnerID string
	Outcome    Outcome
	Reason     string
}

// Allowed reports whether the decision permits the operation.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }
