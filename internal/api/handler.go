// Package api provides the HTTP handlers for the REST surface: the
// credential and team reference resources, the admin audit views and API key
// management. Handlers decode, call a service and encode; every access
// decision happens in the service layer.
package api

import (
	"rowguard/internal/service/apikey"
	"rowguard/internal/service/audit"
	"rowguard/internal/service/credential"
	"rowguard/internal/service/team"
)

// Handler carries the services behind the REST surface.
type Handler struct {
	credentials *credential.Service
	teams       *team.Service
	audit       *audit.Query
	apiKeys     *apikey.Service
}

// NewHandler creates a new Handler with all required service dependencies.
func NewHandler(
	credentials *credential.Service,
	teams *team.Service,
	auditQuery *audit.Query,
	apiKeys *apikey.Service,
) *Handler {
	return &Handler{
		credentials: credentials,
		teams:       teams,
		audit:       auditQuery,
		apiKeys:     apiKeys,
	}
}
