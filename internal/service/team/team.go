// Package team implements the team-owned reference resource: teams and their
// memberships, guarded row by row through the policy evaluator.
package team

import (
	"context"
	"fmt"

	"rowguard/internal/domain"
)

// resourceName is the resource the default policy registers for teams.
const resourceName = "teams"

// Service provides team and membership management. Reads require team
// membership, mutations require a team admin or the creator; the evaluator
// enforces both before the repository is touched.
type Service struct {
	repo  domain.MembershipRepository
	authz domain.PolicyEvaluator
}

// NewService creates a new team Service.
func NewService(repo domain.MembershipRepository, authz domain.PolicyEvaluator) *Service {
	return &Service{repo: repo, authz: authz}
}

// row maps a team onto the shape the evaluator checks. The creator is the
// row owner; the team itself is the owning team.
func row(t *domain.Team) domain.Row {
	return domain.Row{OwnerID: t.CreatedBy, TeamID: t.ID, ID: t.ID}
}

// Create persists a new team and enrolls the calling subject as its first
// admin.
func (s *Service) Create(ctx context.Context, req domain.CreateTeamRequest) (*domain.Team, error) {
	actor := domain.CurrentIdentity(ctx)
	if err := s.authz.Require(ctx, resourceName, domain.OpInsert, domain.Row{OwnerID: actor.SubjectID}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateTeam(ctx, &domain.Team{
		Name:      req.Name,
		CreatedBy: actor.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	if err := s.repo.AddMember(ctx, &domain.TeamMembership{
		TeamID: created.ID,
		UserID: actor.SubjectID,
		Role:   domain.RoleAdmin,
	}); err != nil {
		return nil, fmt.Errorf("enroll creator in team: %w", err)
	}
	return created, nil
}

// Get returns a team by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Team, error) {
	t, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpSelect, row(t)); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the teams the calling subject belongs to.
func (s *Service) List(ctx context.Context) ([]domain.Team, error) {
	actor := domain.CurrentIdentity(ctx)
	if actor.IsAnonymous() {
		return nil, domain.ErrAccessDenied("authentication required")
	}
	return s.repo.ListTeamsForUser(ctx, actor.SubjectID)
}

// Delete removes a team and, through the schema, its memberships.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpDelete, row(t)); err != nil {
		return err
	}
	if err := s.repo.DeleteTeam(ctx, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

// AddMember adds a user to a team. Changing the roster is a mutation of the
// team row.
func (s *Service) AddMember(ctx context.Context, req domain.AddTeamMemberRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	t, err := s.repo.GetTeam(ctx, req.TeamID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpUpdate, row(t)); err != nil {
		return err
	}
	if err := s.repo.AddMember(ctx, &domain.TeamMembership{
		TeamID: req.TeamID,
		UserID: req.UserID,
		Role:   req.Role,
	}); err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a team.
func (s *Service) RemoveMember(ctx context.Context, teamID, userID string) error {
	t, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpUpdate, row(t)); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	return nil
}

// ListMembers returns the members of a team.
func (s *Service) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMembership, error) {
	t, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, resourceName, domain.OpSelect, row(t)); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, teamID)
}
