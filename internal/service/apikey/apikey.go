// Package apikey manages API keys. Key administration is an admin-only
// surface; the keys themselves authenticate as regular subjects.
package apikey

import (
	"context"
	"fmt"

	"rowguard/internal/domain"
)

// Service creates, lists and revokes API keys. Raw key material is returned
// exactly once, at creation; only the SHA-256 hash is stored.
type Service struct {
	repo domain.APIKeyRepository
}

// NewService creates a new API key Service.
func NewService(repo domain.APIKeyRepository) *Service {
	return &Service{repo: repo}
}

func requireAdmin(ctx context.Context) error {
	id := domain.CurrentIdentity(ctx)
	if id.IsAnonymous() {
		return domain.ErrAccessDenied("authentication required")
	}
	if !id.IsAdmin {
		return domain.ErrAccessDenied("admin privileges required")
	}
	return nil
}

// Create mints a key for the requested subject and returns the raw key
// alongside the stored metadata.
func (s *Service) Create(ctx context.Context, req domain.CreateAPIKeyRequest) (string, *domain.APIKey, error) {
	if err := requireAdmin(ctx); err != nil {
		return "", nil, err
	}
	if err := req.Validate(); err != nil {
		return "", nil, err
	}

	raw, hash, prefix, err := domain.GenerateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generate api key: %w", err)
	}

	key, err := s.repo.Create(ctx, &domain.APIKey{
		SubjectID: req.SubjectID,
		Name:      req.Name,
		KeyPrefix: prefix,
		KeyHash:   hash,
		IsAdmin:   req.IsAdmin,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return "", nil, fmt.Errorf("create api key: %w", err)
	}
	return raw, key, nil
}

// List returns all keys, hashes omitted.
func (s *Service) List(ctx context.Context) ([]domain.APIKey, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Delete revokes a key by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
