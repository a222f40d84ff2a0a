package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rowguard/internal/domain"
)

// auditFilterFromQuery parses the shared filter parameters of the audit
// endpoints: actor, resource, outcome, reason, since, until, limit.
func auditFilterFromQuery(q url.Values) (domain.AuditFilter, error) {
	f := domain.AuditFilter{
		Actor:    q.Get("actor"),
		Resource: q.Get("resource"),
		Reason:   q.Get("reason"),
	}
	if v := q.Get("outcome"); v != "" {
		o := domain.Outcome(v)
		if o != domain.OutcomeAllow && o != domain.OutcomeDeny {
			return f, domain.ErrValidation("outcome must be %q or %q", domain.OutcomeAllow, domain.OutcomeDeny)
		}
		f.Outcome = o
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, domain.ErrValidation("since must be an RFC 3339 timestamp")
		}
		f.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, domain.ErrValidation("until must be an RFC 3339 timestamp")
		}
		f.Until = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, domain.ErrValidation("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}

func (h *Handler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.audit.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryToAPI(e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handler) AuditSummary(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.audit.Summary(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reasonCountResponse, len(counts))
	for i, c := range counts {
		out[i] = reasonCountToAPI(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}
