// Package credential implements the user-owned reference resource: named
// secrets whose rows are guarded by the policy evaluator before any storage
// access.
package credential

import (
	"context"
	"fmt"

	"rowguard/internal/domain"
)

// resourceName is the resource the default policy registers for credentials.
const resourceName = "credentials"

// Service provides CRUD operations for credentials. Every operation asks the
// evaluator first; the repository is only reached on an allow.
type Service struct {
	repo  domain.CredentialRepository
	authz domain.PolicyEvaluator
}

// NewService creates a new credential Service.
func NewService(repo domain.CredentialRepository, authz domain.PolicyEvaluator) *Service {
	return &Service{repo: repo, authz: authz}
}

// Create persists a new credential owned by the calling subject.
func (s *Service) Create(ctx context.Context, req domain.CreateCredentialRequest) (*domain.Credential, error) {
	actor := domain.CurrentIdentity(ctx)
	if err := s.authz.Require(ctx, resourceName, domain.OpInsert, domain.Row{OwnerID: actor.SubjectID}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Credential{
		OwnerID: actor.SubjectID,
		Name:    req.Name,
		Secret:  req.Secret,
	})
	if err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return created, nil
}

// Get returns a credential by ID, secret included.
func (s *Service) Get(ctx context.Context, id string) (*domain.Credential, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpSelect, domain.Row{OwnerID: c.OwnerID, ID: c.ID}); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the credentials owned by ownerID, secrets omitted. An empty
// ownerID lists the calling subject's own credentials.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Credential, error) {
	if ownerID == "" {
		ownerID = domain.CurrentIdentity(ctx).SubjectID
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpSelect, domain.Row{OwnerID: ownerID}); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update applies the non-nil fields of req to an existing credential.
func (s *Service) Update(ctx context.Context, req domain.UpdateCredentialRequest) (*domain.Credential, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpUpdate, domain.Row{OwnerID: existing.OwnerID, ID: existing.ID}); err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Secret != nil {
		existing.Secret = *req.Secret
	}
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update credential: %w", err)
	}
	return updated, nil
}

// Delete removes a credential by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpDelete, domain.Row{OwnerID: existing.OwnerID, ID: existing.ID}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
