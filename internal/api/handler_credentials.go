package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rowguard/internal/domain"
)

func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req createCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	c, err := h.credentials.Create(r.Context(), domain.CreateCredentialRequest{
		Name:   req.Name,
		Secret: req.Secret,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, credentialToAPI(c))
}

// ListCredentials lists the caller's credentials, or another owner's when
// ?owner_id= is given. Secrets are never included in listings.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	cs, err := h.credentials.List(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]credentialResponse, len(cs))
	for i := range cs {
		out[i] = credentialToAPI(&cs[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	c, err := h.credentials.Get(r.Context(), chi.URLParam(r, "credentialID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialToAPI(c))
}

func (h *Handler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	var req updateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	c, err := h.credentials.Update(r.Context(), domain.UpdateCredentialRequest{
		ID:     chi.URLParam(r, "credentialID"),
		Name:   req.Name,
		Secret: req.Secret,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialToAPI(c))
}

func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context(), chi.URLParam(r, "credentialID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
