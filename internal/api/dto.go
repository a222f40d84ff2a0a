package api

import (
	"time"

	"rowguard/internal/domain"
)

type createCredentialRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type updateCredentialRequest struct {
	Name   *string `json:"name"`
	Secret *string `json:"secret"`
}

type credentialResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func credentialToAPI(c *domain.Credential) credentialResponse {
	return credentialResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Secret:    c.Secret,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type createTeamRequest struct {
	Name string `json:"name"`
}

type teamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func teamToAPI(t *domain.Team) teamResponse {
	return teamResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

type addTeamMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type teamMemberResponse struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func teamMemberToAPI(m domain.TeamMembership) teamMemberResponse {
	return teamMemberResponse{
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}

type auditEntryResponse struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Actor         string    `json:"actor"`
	Resource      string    `json:"resource"`
	Operation     string    `json:"operation"`
	RowOwnerID    string    `json:"row_owner_id,omitempty"`
	TargetID      string    `json:"target_id,omitempty"`
	Outcome       string    `json:"outcome"`
	Reason        string    `json:"reason"`
	ClientInfo    string    `json:"client_info,omitempty"`
	RawDescriptor string    `json:"raw_descriptor,omitempty"`
	UnitID        string    `json:"unit_id,omitempty"`
}

func auditEntryToAPI(e domain.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		Actor:         e.Actor,
		Resource:      e.Resource,
		Operation:     string(e.Operation),
		RowOwnerID:    e.RowOwnerID,
		TargetID:      e.TargetID,
		Outcome:       string(e.Outcome),
		Reason:        e.Reason,
		ClientInfo:    e.ClientInfo,
		RawDescriptor: e.RawDescriptor,
		UnitID:        e.UnitID,
	}
}

type reasonCountResponse struct {
	Resource string `json:"resource"`
	Reason   string `json:"reason"`
	Outcome  string `json:"outcome"`
	Count    int64  `json:"count"`
}

func reasonCountToAPI(c domain.ReasonCount) reasonCountResponse {
	return reasonCountResponse{
		Resource: c.Resource,
		Reason:   c.Reason,
		Outcome:  string(c.Outcome),
		Count:    c.Count,
	}
}

type createAPIKeyRequest struct {
	SubjectID string     `json:"subject_id"`
	Name      string     `json:"name"`
	IsAdmin   bool       `json:"is_admin"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// apiKeyResponse never carries the hash. Key holds the raw key and is set
// only in the create response; afterwards the key cannot be recovered.
type apiKeyResponse struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subject_id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	IsAdmin   bool       `json:"is_admin"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Key       string     `json:"key,omitempty"`
}

func apiKeyToAPI(k domain.APIKey) apiKeyResponse {
	return apiKeyResponse{
		ID:        k.ID,
		SubjectID: k.SubjectID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		IsAdmin:   k.IsAdmin,
		ExpiresAt: k.ExpiresAt,
		CreatedAt: k.CreatedAt,
	}
}
