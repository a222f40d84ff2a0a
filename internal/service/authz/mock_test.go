package authz

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"rowguard/internal/domain"
)

// mockMembershipRepo implements domain.MembershipRepository with function
// fields. Methods without a function set panic so tests catch unexpected
// calls, in particular membership lookups on paths that must not consult
// membership at all.
type mockMembershipRepo struct {
	sharedTeamFn   func(ctx context.Context, userA, userB string) (bool, error)
	isTeamMemberFn func(ctx context.Context, teamID, userID string) (bool, error)
	isTeamAdminFn  func(ctx context.Context, teamID, userID string) (bool, error)
}

var _ domain.MembershipRepository = (*mockMembershipRepo)(nil)

func (m *mockMembershipRepo) SharedTeam(ctx context.Context, userA, userB string) (bool, error) {
	if m.sharedTeamFn != nil {
		return m.sharedTeamFn(ctx, userA, userB)
	}
	panic("unexpected call to mockMembershipRepo.SharedTeam")
}

func (m *mockMembershipRepo) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	if m.isTeamMemberFn != nil {
		return m.isTeamMemberFn(ctx, teamID, userID)
	}
	panic("unexpected call to mockMembershipRepo.IsTeamMember")
}

func (m *mockMembershipRepo) IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	if m.isTeamAdminFn != nil {
		return m.isTeamAdminFn(ctx, teamID, userID)
	}
	panic("unexpected call to mockMembershipRepo.IsTeamAdmin")
}

func (m *mockMembershipRepo) CreateTeam(_ context.Context, _ *domain.Team) (*domain.Team, error) {
	panic("unexpected call to mockMembershipRepo.CreateTeam")
}

func (m *mockMembershipRepo) GetTeam(_ context.Context, _ string) (*domain.Team, error) {
	panic("unexpected call to mockMembershipRepo.GetTeam")
}

func (m *mockMembershipRepo) ListTeamsForUser(_ context.Context, _ string) ([]domain.Team, error) {
	panic("unexpected call to mockMembershipRepo.ListTeamsForUser")
}

func (m *mockMembershipRepo) DeleteTeam(_ context.Context, _ string) error {
	panic("unexpected call to mockMembershipRepo.DeleteTeam")
}

func (m *mockMembershipRepo) AddMember(_ context.Context, _ *domain.TeamMembership) error {
	panic("unexpected call to mockMembershipRepo.AddMember")
}

func (m *mockMembershipRepo) RemoveMember(_ context.Context, _, _ string) error {
	panic("unexpected call to mockMembershipRepo.RemoveMember")
}

func (m *mockMembershipRepo) ListMembers(_ context.Context, _ string) ([]domain.TeamMembership, error) {
	panic("unexpected call to mockMembershipRepo.ListMembers")
}

// captureRecorder collects audit entries handed to the evaluator's recorder.
type captureRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

var _ domain.AuditRecorder = (*captureRecorder)(nil)

func (r *captureRecorder) Record(e domain.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *captureRecorder) Entries() []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
