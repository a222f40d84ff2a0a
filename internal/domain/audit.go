package domain

import "time"

// AuditEntry is one recorded authorization event: a denied access or an
// admin-override allow. Entries are append-only; this engine never mutates
// or deletes them (retention is an external concern).
type AuditEntry struct {
	ID            string
	Timestamp     time.Time
	Actor         string
	Resource      string
	Operation     Operation
	RowOwnerID    string
	TargetID      string // row or team identifier, when the caller knows it
	Outcome       Outcome
	Reason        string
	ClientInfo    string // remote address and user agent, when available
	RawDescriptor string // free-form description of the attempted operation
	UnitID        string
}

// Audit query bounds.
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// AuditFilter bounds an audit query. Zero values mean "any".
type AuditFilter struct {
	Actor    string
	Resource string
	Outcome  Outcome
	Reason   string
	Since    time.Time
	Until    time.Time
	Limit    int
}

// EffectiveLimit returns the page size clamped to [1, MaxAuditLimit].
func (f AuditFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultAuditLimit
	}
	if f.Limit > MaxAuditLimit {
		return MaxAuditLimit
	}
	return f.Limit
}

// ReasonCount is one bucket of the audit summary: how often a (resource,
// reason, outcome) combination occurred in the filtered window.
type ReasonCount struct {
	Resource string
	Reason   string
	Outcome  Outcome
	Count    int64
}
