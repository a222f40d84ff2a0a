package authz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rowguard/internal/domain"
	"rowguard/internal/metrics"
	"rowguard/internal/policy"
)

// Evaluator decides whether the acting identity may perform an operation on
// a row. Every deny and every admin-override allow is forwarded to the audit
// recorder before the decision is returned.
type Evaluator struct {
	registry    *policy.Registry
	memberships *Memberships
	auditor     domain.AuditRecorder
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

var _ domain.PolicyEvaluator = (*Evaluator)(nil)

func NewEvaluator(
	registry *policy.Registry,
	memberships *Memberships,
	auditor domain.AuditRecorder,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Evaluator {
	return &Evaluator{
		registry:    registry,
		memberships: memberships,
		auditor:     auditor,
		logger:      logger.With("component", "authz"),
		metrics:     m,
	}
}

// Evaluate applies the resource's rule set to (actor, operation, row). The
// actor is the identity of the active unit of work. A decision is always a
// pure function of those inputs plus the membership facts; membership lookup
// failures count as "false" facts and so produce a deny, with the underlying
// error reported to logs and metrics rather than to the caller. The returned
// error is non-nil only for configuration mistakes such as an unregistered
// resource.
func (e *Evaluator) Evaluate(ctx context.Context, resource string, op domain.Operation, row domain.Row) (domain.Decision, error) {
	rules, err := e.registry.Lookup(resource)
	if err != nil {
		return domain.Decision{}, err
	}
	if !op.Valid() {
		return domain.Decision{}, domain.ErrValidation("unknown operation %q", op)
	}

	actor := domain.CurrentIdentity(ctx)
	d := domain.Decision{
		Actor:      actor.SubjectID,
		Resource:   resource,
		Operation:  op,
		RowOwnerID: row.OwnerID,
	}

	switch {
	case actor.IsAdmin:
		d.Outcome, d.Reason = domain.OutcomeAllow, domain.ReasonAdminOverride
	case actor.IsAnonymous():
		d.Outcome, d.Reason = domain.OutcomeDeny, domain.ReasonNoIdentity
	default:
		d.Outcome, d.Reason = e.applyRule(ctx, rules.RuleFor(op), op, actor, row)
	}

	e.metrics.RecordDecision(resource, string(op), string(d.Outcome), d.Reason)
	if d.Outcome == domain.OutcomeDeny || d.Reason == domain.ReasonAdminOverride {
		e.record(ctx, d, row)
	}
	return d, nil
}

// Require evaluates and converts a deny into a generic AccessDeniedError.
// The reason code stays in the audit trail; callers translate the error into
// a bare forbidden response that leaks neither reason nor row existence.
func (e *Evaluator) Require(ctx context.Context, resource string, op domain.Operation, row domain.Row) error {
	d, err := e.Evaluate(ctx, resource, op, row)
	if err != nil {
		return err
	}
	if !d.Allowed() {
		return domain.ErrAccessDenied("access denied")
	}
	return nil
}

func (e *Evaluator) applyRule(ctx context.Context, rule domain.Rule, op domain.Operation, actor domain.Identity, row domain.Row) (domain.Outcome, string) {
	switch rule {
	case domain.RuleAuthenticated:
		// Anonymous actors were already denied.
		return domain.OutcomeAllow, domain.ReasonAuthenticated

	case domain.RuleOwnerOnly:
		if row.OwnerID == actor.SubjectID {
			return domain.OutcomeAllow, domain.ReasonOwner
		}
		return domain.OutcomeDeny, ownerOnlyDenyReason(op)

	case domain.RuleOwnerOrTeam:
		if row.OwnerID == actor.SubjectID {
			return domain.OutcomeAllow, domain.ReasonOwner
		}
		shared, err := e.memberships.SameTeam(ctx, row.OwnerID, actor.SubjectID)
		if err != nil {
			e.reportLookupFailure(ctx, err)
		}
		if shared {
			return domain.OutcomeAllow, domain.ReasonTeammate
		}
		return domain.OutcomeDeny, domain.ReasonNotOwnerNotTeammate

	case domain.RuleTeamMember:
		member, err := e.memberships.IsTeamMember(ctx, row.TeamID, actor.SubjectID)
		if err != nil {
			e.reportLookupFailure(ctx, err)
		}
		if member {
			return domain.OutcomeAllow, domain.ReasonTeamMember
		}
		return domain.OutcomeDeny, domain.ReasonNotTeamMember

	case domain.RuleTeamAdmin:
		if row.OwnerID == actor.SubjectID {
			return domain.OutcomeAllow, domain.ReasonOwner
		}
		admin, err := e.memberships.IsTeamAdmin(ctx, row.TeamID, actor.SubjectID)
		if err != nil {
			e.reportLookupFailure(ctx, err)
		}
		if admin {
			return domain.OutcomeAllow, domain.ReasonTeamAdmin
		}
		return domain.OutcomeDeny, domain.ReasonNotTeamAdmin

	default:
		// Registry validation keeps this unreachable.
		return domain.OutcomeDeny, "unknown-rule"
	}
}

// reportLookupFailure surfaces a membership lookup error to operational
// logging and metrics. The authorization outcome is unaffected: the caller
// proceeds with the fact treated as false.
func (e *Evaluator) reportLookupFailure(ctx context.Context, err error) {
	e.logger.Error("membership lookup failed", "error", err, "unit_id", domain.UnitID(ctx))
	e.metrics.RecordMembershipFailure()
}

func ownerOnlyDenyReason(op domain.Operation) string {
	switch op {
	case domain.OpInsert:
		return domain.ReasonNotOwnerOnInsert
	case domain.OpDelete:
		return domain.ReasonNotOwnerOnDelete
	default:
		return "not-owner-on-" + string(op)
	}
}

func (e *Evaluator) record(ctx context.Context, d domain.Decision, row domain.Row) {
	target := row.ID
	if target == "" {
		target = row.TeamID
	}
	e.auditor.Record(domain.AuditEntry{
		Timestamp:     time.Now().UTC(),
		Actor:         d.Actor,
		Resource:      d.Resource,
		Operation:     d.Operation,
		RowOwnerID:    d.RowOwnerID,
		TargetID:      target,
		Outcome:       d.Outcome,
		Reason:        d.Reason,
		ClientInfo:    domain.ClientInfoFromContext(ctx),
		RawDescriptor: describe(d, row),
		UnitID:        domain.UnitID(ctx),
	})
}

func describe(d domain.Decision, row domain.Row) string {
	if row.ID != "" {
		return fmt.Sprintf("%s %s row %s", d.Operation, d.Resource, row.ID)
	}
	return fmt.Sprintf("%s %s", d.Operation, d.Resource)
}
