package team

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rowguard/internal/domain"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

func asActor(t *testing.T, id domain.Identity) context.Context {
	t.Helper()
	ctx, end, err := domain.BeginUnit(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(end)
	return ctx
}

// mockMembershipRepo implements domain.MembershipRepository with function
// fields. Methods without a function set panic so tests catch calls that
// the guard should have blocked.
type mockMembershipRepo struct {
	createTeamFn       func(ctx context.Context, tm *domain.Team) (*domain.Team, error)
	getTeamFn          func(ctx context.Context, id string) (*domain.Team, error)
	listTeamsForUserFn func(ctx context.Context, userID string) ([]domain.Team, error)
	deleteTeamFn       func(ctx context.Context, id string) error
	addMemberFn        func(ctx context.Context, m *domain.TeamMembership) error
	removeMemberFn     func(ctx context.Context, teamID, userID string) error
	listMembersFn      func(ctx context.Context, teamID string) ([]domain.TeamMembership, error)
}

var _ domain.MembershipRepository = (*mockMembershipRepo)(nil)

func (m *mockMembershipRepo) SharedTeam(_ context.Context, _, _ string) (bool, error) {
	panic("unexpected call to mockMembershipRepo.SharedTeam")
}

func (m *mockMembershipRepo) IsTeamMember(_ context.Context, _, _ string) (bool, error) {
	panic("unexpected call to mockMembershipRepo.IsTeamMember")
}

func (m *mockMembershipRepo) IsTeamAdmin(_ context.Context, _, _ string) (bool, error) {
	panic("unexpected call to mockMembershipRepo.IsTeamAdmin")
}

func (m *mockMembershipRepo) CreateTeam(ctx context.Context, tm *domain.Team) (*domain.Team, error) {
	if m.createTeamFn == nil {
		panic("unexpected call to mockMembershipRepo.CreateTeam")
	}
	return m.createTeamFn(ctx, tm)
}

func (m *mockMembershipRepo) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	if m.getTeamFn == nil {
		panic("unexpected call to mockMembershipRepo.GetTeam")
	}
	return m.getTeamFn(ctx, id)
}

func (m *mockMembershipRepo) ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	if m.listTeamsForUserFn == nil {
		panic("unexpected call to mockMembershipRepo.ListTeamsForUser")
	}
	return m.listTeamsForUserFn(ctx, userID)
}

func (m *mockMembershipRepo) DeleteTeam(ctx context.Context, id string) error {
	if m.deleteTeamFn == nil {
		panic("unexpected call to mockMembershipRepo.DeleteTeam")
	}
	return m.deleteTeamFn(ctx, id)
}

func (m *mockMembershipRepo) AddMember(ctx context.Context, mem *domain.TeamMembership) error {
	if m.addMemberFn == nil {
		panic("unexpected call to mockMembershipRepo.AddMember")
	}
	return m.addMemberFn(ctx, mem)
}

func (m *mockMembershipRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	if m.removeMemberFn == nil {
		panic("unexpected call to mockMembershipRepo.RemoveMember")
	}
	return m.removeMemberFn(ctx, teamID, userID)
}

func (m *mockMembershipRepo) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMembership, error) {
	if m.listMembersFn == nil {
		panic("unexpected call to mockMembershipRepo.ListMembers")
	}
	return m.listMembersFn(ctx, teamID)
}

// mockEvaluator stands in for the policy evaluator.
type mockEvaluator struct {
	evaluateFn func(ctx context.Context, resource string, op domain.Operation, row domain.Row) (domain.Decision, error)
	requireFn  func(ctx context.Context, resource string, op domain.Operation, row domain.Row) error
}

var _ domain.PolicyEvaluator = (*mockEvaluator)(nil)

func (m *mockEvaluator) Evaluate(ctx context.Context, resource string, op domain.Operation, row domain.Row) (domain.Decision, error) {
	if m.evaluateFn == nil {
		panic("unexpected call to mockEvaluator.Evaluate")
	}
	return m.evaluateFn(ctx, resource, op, row)
}

func (m *mockEvaluator) Require(ctx context.Context, resource string, op domain.Operation, row domain.Row) error {
	if m.requireFn == nil {
		panic("unexpected call to mockEvaluator.Require")
	}
	return m.requireFn(ctx, resource, op, row)
}

func allowAll() *mockEvaluator {
	return &mockEvaluator{requireFn: func(context.Context, string, domain.Operation, domain.Row) error {
		return nil
	}}
}

func denyAll() *mockEvaluator {
	return &mockEvaluator{requireFn: func(context.Context, string, domain.Operation, domain.Row) error {
		return domain.ErrAccessDenied("access denied")
	}}
}
