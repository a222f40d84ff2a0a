package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rowguard/internal/domain"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	t, err := h.teams.Create(r.Context(), domain.CreateTeamRequest{Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, teamToAPI(t))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ts, err := h.teams.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]teamResponse, len(ts))
	for i := range ts {
		out[i] = teamToAPI(&ts[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.teams.Get(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teamToAPI(t))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.Delete(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	ms, err := h.teams.ListMembers(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]teamMemberResponse, len(ms))
	for i, m := range ms {
		out[i] = teamMemberToAPI(m)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	var req addTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.teams.AddMember(r.Context(), domain.AddTeamMemberRequest{
		TeamID: chi.URLParam(r, "teamID"),
		UserID: req.UserID,
		Role:   req.Role,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.RemoveMember(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
