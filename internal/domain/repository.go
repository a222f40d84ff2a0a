package domain

import "context"

// MembershipRepository reads team-membership facts for authorization and
// manages teams for the reference application. The three fact lookups back
// the per-unit membership cache.
type MembershipRepository interface {
	SharedTeam(ctx context.Context, userA, userB string) (bool, error)
	IsTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error)

	CreateTeam(ctx context.Context, t *Team) (*Team, error)
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeamsForUser(ctx context.Context, userID string) ([]Team, error)
	DeleteTeam(ctx context.Context, id string) error
	AddMember(ctx context.Context, m *TeamMembership) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]TeamMembership, error)
}

// AuditRepository persists and queries audit entries. Insert is append-only;
// nothing here updates or deletes recorded entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
	Summary(ctx context.Context, f AuditFilter) ([]ReasonCount, error)
}

// CredentialRepository stores the reference credentials resource.
type CredentialRepository interface {
	Create(ctx context.Context, c *Credential) (*Credential, error)
	GetByID(ctx context.Context, id string) (*Credential, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Credential, error)
	Update(ctx context.Context, c *Credential) (*Credential, error)
	Delete(ctx context.Context, id string) error
}

// APIKeyRepository stores hashed API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, k *APIKey) (*APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
	Delete(ctx context.Context, id string) error
}
