package repository

import (
	"context"
	"database/sql"
	"strings"

	"rowguard/internal/domain"
)

// AuditRepo persists authorization decisions. Inserts go through the write
// pool; dashboard queries run on the read pool.
type AuditRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

func NewAuditRepo(writeDB, readDB *sql.DB) *AuditRepo {
	return &AuditRepo{writeDB: writeDB, readDB: readDB}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}

	const q = `
		INSERT INTO audit_log (
			id, ts, actor, resource, operation, row_owner_id, target_id,
			outcome, reason, client_info, raw_descriptor, unit_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.writeDB.ExecContext(ctx, q,
		e.ID, e.Timestamp.UTC(), e.Actor, e.Resource, string(e.Operation),
		e.RowOwnerID, e.TargetID, string(e.Outcome), e.Reason,
		e.ClientInfo, e.RawDescriptor, e.UnitID,
	)
	return mapDBError(err)
}

// filterClauses translates the filter into WHERE conditions shared by List
// and Summary.
func filterClauses(f domain.AuditFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Actor != "" {
		conds = append(conds, "actor = ?")
		args = append(args, f.Actor)
	}
	if f.Resource != "" {
		conds = append(conds, "resource = ?")
		args = append(args, f.Resource)
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if f.Reason != "" {
		conds = append(conds, "reason = ?")
		args = append(args, f.Reason)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		conds = append(conds, "ts < ?")
		args = append(args, f.Until.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns matching entries, newest first.
func (r *AuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	q := `
		SELECT id, ts, actor, resource, operation, row_owner_id, target_id,
		       outcome, reason, client_info, raw_descriptor, unit_id
		FROM audit_log`

	where, args := filterClauses(f)
	q += where + ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, f.EffectiveLimit())

	rows, err := r.readDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var op, outcome string
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Actor, &e.Resource, &op, &e.RowOwnerID,
			&e.TargetID, &outcome, &e.Reason, &e.ClientInfo, &e.RawDescriptor,
			&e.UnitID,
		); err != nil {
			return nil, err
		}
		e.Operation = domain.Operation(op)
		e.Outcome = domain.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary aggregates entry counts by resource, reason and outcome.
func (r *AuditRepo) Summary(ctx context.Context, f domain.AuditFilter) ([]domain.ReasonCount, error) {
	q := `
		SELECT resource, reason, outcome, COUNT(*)
		FROM audit_log`

	where, args := filterClauses(f)
	q += where + `
		GROUP BY resource, reason, outcome
		ORDER BY COUNT(*) DESC, resource, reason
		LIMIT ?`
	args = append(args, f.EffectiveLimit())

	rows, err := r.readDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var counts []domain.ReasonCount
	for rows.Next() {
		var c domain.ReasonCount
		var outcome string
		if err := rows.Scan(&c.Resource, &c.Reason, &outcome, &c.Count); err != nil {
			return nil, err
		}
		c.Outcome = domain.Outcome(outcome)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
