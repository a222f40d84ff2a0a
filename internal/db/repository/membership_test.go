package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"rowguard/internal/db"
	"rowguard/internal/domain"
)

func newMembershipRepo(t *testing.T) *MembershipRepo {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	return NewMembershipRepo(writeDB, readDB)
}

func seedTeam(t *testing.T, repo *MembershipRepo, name, creator string, members map[string]string) *domain.Team {
	t.Helper()
	ctx := context.Background()

	team, err := repo.CreateTeam(ctx, &domain.Team{Name: name, CreatedBy: creator})
	require.NoError(t, err)

	for userID, role := range members {
		err := repo.AddMember(ctx, &domain.TeamMembership{TeamID: team.ID, UserID: userID, Role: role})
		require.NoError(t, err)
	}
	return team
}

func TestMembershipRepo_SharedTeam(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
		"bob":   domain.RoleMember,
	})
	seedTeam(t, repo, "research", "carol", map[string]string{
		"carol": domain.RoleAdmin,
	})

	tests := []struct {
		name  string
		userA string
		userB string
		want  bool
	}{
		{name: "same team", userA: "alice", userB: "bob", want: true},
		{name: "same team reversed", userA: "bob", userB: "alice", want: true},
		{name: "different teams", userA: "alice", userB: "carol", want: false},
		{name: "unknown user", userA: "alice", userB: "mallory", want: false},
		{name: "both unknown", userA: "x", userB: "y", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SharedTeam(ctx, tt.userA, tt.userB)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMembershipRepo_IsTeamAdmin(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	team := seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
		"bob":   domain.RoleMember,
	})

	admin, err := repo.IsTeamAdmin(ctx, team.ID, "alice")
	require.NoError(t, err)
	require.True(t, admin)

	admin, err = repo.IsTeamAdmin(ctx, team.ID, "bob")
	require.NoError(t, err)
	require.False(t, admin)

	admin, err = repo.IsTeamAdmin(ctx, team.ID, "carol")
	require.NoError(t, err)
	require.False(t, admin)
}

func TestMembershipRepo_IsTeamMember(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	team := seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
		"carol": domain.RoleMember,
	})

	for _, userID := range []string{"alice", "carol"} {
		member, err := repo.IsTeamMember(ctx, team.ID, userID)
		require.NoError(t, err)
		require.True(t, member, userID)
	}

	member, err := repo.IsTeamMember(ctx, team.ID, "mallory")
	require.NoError(t, err)
	require.False(t, member)

	member, err = repo.IsTeamMember(ctx, "missing", "alice")
	require.NoError(t, err)
	require.False(t, member)
}

func TestMembershipRepo_TeamLifecycle(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTeam(ctx, &domain.Team{Name: "platform", CreatedBy: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetTeam(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "platform", got.Name)
	require.Equal(t, "alice", got.CreatedBy)

	_, err = repo.CreateTeam(ctx, &domain.Team{Name: "platform", CreatedBy: "bob"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = repo.GetTeam(ctx, "missing")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, repo.DeleteTeam(ctx, created.ID))
	err = repo.DeleteTeam(ctx, created.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestMembershipRepo_DeleteTeamCascadesMembers(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	team := seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
		"bob":   domain.RoleMember,
	})

	require.NoError(t, repo.DeleteTeam(ctx, team.ID))

	members, err := repo.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Empty(t, members)

	shared, err := repo.SharedTeam(ctx, "alice", "bob")
	require.NoError(t, err)
	require.False(t, shared)
}

func TestMembershipRepo_Members(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	team := seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
	})

	err := repo.AddMember(ctx, &domain.TeamMembership{TeamID: team.ID, UserID: "bob", Role: domain.RoleMember})
	require.NoError(t, err)

	err = repo.AddMember(ctx, &domain.TeamMembership{TeamID: team.ID, UserID: "bob", Role: domain.RoleMember})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	err = repo.AddMember(ctx, &domain.TeamMembership{TeamID: "missing", UserID: "bob", Role: domain.RoleMember})
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	members, err := repo.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, repo.RemoveMember(ctx, team.ID, "bob"))
	err = repo.RemoveMember(ctx, team.ID, "bob")
	require.ErrorAs(t, err, &notFound)

	members, err = repo.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0].UserID)
}

func TestMembershipRepo_ListTeamsForUser(t *testing.T) {
	repo := newMembershipRepo(t)
	ctx := context.Background()

	seedTeam(t, repo, "platform", "alice", map[string]string{
		"alice": domain.RoleAdmin,
		"bob":   domain.RoleMember,
	})
	seedTeam(t, repo, "research", "alice", map[string]string{
		"alice": domain.RoleAdmin,
	})

	teams, err := repo.ListTeamsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Equal(t, "platform", teams[0].Name)
	require.Equal(t, "research", teams[1].Name)

	teams, err = repo.ListTeamsForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, teams, 1)

	teams, err = repo.ListTeamsForUser(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, teams)
}
