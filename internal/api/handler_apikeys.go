package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rowguard/internal/domain"
)

// CreateAPIKey mints a key for a subject. The raw key appears in this
// response and nowhere else.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	raw, key, err := h.apiKeys.Create(r.Context(), domain.CreateAPIKeyRequest{
		SubjectID: req.SubjectID,
		Name:      req.Name,
		IsAdmin:   req.IsAdmin,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := apiKeyToAPI(*key)
	out.Key = raw
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.apiKeys.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]apiKeyResponse, len(keys))
	for i, k := range keys {
		out[i] = apiKeyToAPI(k)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.apiKeys.Delete(r.Context(), chi.URLParam(r, "keyID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
