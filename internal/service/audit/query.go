package audit

import (
	"context"

	"rowguard/internal/domain"
)

// Query serves the denied-access reporting surface over stored entries.
// Audit data reveals actors and team structure, so every query requires the
// global admin privilege.
type Query struct {
	repo domain.AuditRepository
}

func NewQuery(repo domain.AuditRepository) *Query {
	return &Query{repo: repo}
}

func requireAdmin(ctx context.Context) error {
	id := domain.CurrentIdentity(ctx)
	if id.IsAnonymous() {
		return domain.ErrAccessDenied("authentication required")
	}
	if !id.IsAdmin {
		return domain.ErrAccessDenied("admin privileges required")
	}
	return nil
}

// List returns matching entries, newest first.
func (q *Query) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return q.repo.List(ctx, f)
}

// Summary returns per-(resource, reason, outcome) counts for the filter
// window, which backs the "most frequent denial reasons" dashboard view.
func (q *Query) Summary(ctx context.Context, f domain.AuditFilter) ([]domain.ReasonCount, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return q.repo.Summary(ctx, f)
}
