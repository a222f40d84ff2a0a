package domain

import "context"

// PolicyEvaluator decides row access for registered resources. Services
// depend on this interface rather than the concrete evaluator.
// Implemented by authz.Evaluator.
type PolicyEvaluator interface {
	// Evaluate returns the full decision for one (resource, operation, row)
	// triple. A deny is a value, not an error.
	Evaluate(ctx context.Context, resource string, op Operation, row Row) (Decision, error)
	// Require reduces Evaluate to a gate: nil on allow, AccessDeniedError
	// on deny.
	Require(ctx context.Context, resource string, op Operation, row Row) error
}

// AuditRecorder accepts finished audit entries for asynchronous delivery.
// Record never blocks and never reports failure to the caller; the
// implementation owns durability.
// Implemented by audit.Logger.
type AuditRecorder interface {
	Record(e AuditEntry)
}
