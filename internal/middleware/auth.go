package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rowguard/internal/domain"
)

// Authenticator resolves the acting identity for each request and opens a
// unit of work around the handler. Requests without credentials run as the
// anonymous identity; the evaluator denies them per resource, which keeps
// the denial visible in the audit log. Requests with bad credentials are
// rejected at the door with 401.
type Authenticator struct {
	validator TokenValidator
	apiKeys   domain.APIKeyRepository
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator. A nil validator disables bearer
// tokens; a nil repository disables API keys.
func NewAuthenticator(validator TokenValidator, apiKeys domain.APIKeyRepository, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		validator: validator,
		apiKeys:   apiKeys,
		logger:    logger.With("component", "auth"),
	}
}

// Middleware authenticates the request and binds the identity to a fresh
// unit of work for the duration of the handler.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.resolve(r)
		if err != nil {
			a.logger.Warn("authentication rejected", "error", err, "remote_addr", r.RemoteAddr)
			writeUnauthorized(w)
			return
		}

		ctx := domain.WithClientInfo(r.Context(), clientInfo(r))
		ctx, end, err := domain.BeginUnit(ctx, identity)
		if err != nil {
			a.logger.Error("begin unit of work", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    http.StatusInternalServerError,
				"message": "internal error",
			})
			return
		}
		defer end()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve maps request credentials to an identity. No credentials at all is
// not an error; it resolves to the anonymous identity.
func (a *Authenticator) resolve(r *http.Request) (domain.Identity, error) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if a.validator == nil {
			return domain.Identity{}, fmt.Errorf("bearer tokens are not enabled")
		}
		claims, err := a.validator.Validate(r.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return domain.Identity{}, err
		}
		if claims.Subject == "" {
			return domain.Identity{}, fmt.Errorf("token carries no subject")
		}
		return domain.Identity{SubjectID: claims.Subject, IsAdmin: claims.Admin}, nil
	}

	if rawKey := r.Header.Get("X-API-Key"); rawKey != "" {
		if a.apiKeys == nil {
			return domain.Identity{}, fmt.Errorf("api keys are not enabled")
		}
		key, err := a.apiKeys.GetByHash(r.Context(), domain.HashAPIKey(rawKey))
		if err != nil {
			return domain.Identity{}, fmt.Errorf("api key lookup: %w", err)
		}
		if key.Expired(time.Now()) {
			return domain.Identity{}, fmt.Errorf("api key %q expired", key.KeyPrefix)
		}
		return domain.Identity{SubjectID: key.SubjectID, IsAdmin: key.IsAdmin}, nil
	}

	return domain.Anonymous(), nil
}

func clientInfo(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return r.RemoteAddr + " " + ua
	}
	return r.RemoteAddr
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: provide a valid bearer token or API key",
	})
}
