package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rowguard/internal/domain"
)

// MembershipRepo answers team membership questions against the read pool
// and manages teams and memberships on the write pool.
type MembershipRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

var _ domain.MembershipRepository = (*MembershipRepo)(nil)

func NewMembershipRepo(writeDB, readDB *sql.DB) *MembershipRepo {
	return &MembershipRepo{writeDB: writeDB, readDB: readDB}
}

// SharedTeam reports whether both users belong to at least one common team.
func (r *MembershipRepo) SharedTeam(ctx context.Context, userA, userB string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM team_members a
			JOIN team_members b ON a.team_id = b.team_id
			WHERE a.user_id = ? AND b.user_id = ?
		)`

	var shared int64
	if err := r.readDB.QueryRowContext(ctx, q, userA, userB).Scan(&shared); err != nil {
		return false, err
	}
	return shared == 1, nil
}

// IsTeamMember reports whether the user belongs to the team in any role.
func (r *MembershipRepo) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM team_members
			WHERE team_id = ? AND user_id = ?
		)`

	var member int64
	if err := r.readDB.QueryRowContext(ctx, q, teamID, userID).Scan(&member); err != nil {
		return false, err
	}
	return member == 1, nil
}

// IsTeamAdmin reports whether the user holds the admin role in the team.
func (r *MembershipRepo) IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM team_members
			WHERE team_id = ? AND user_id = ? AND role = 'admin'
		)`

	var admin int64
	if err := r.readDB.QueryRowContext(ctx, q, teamID, userID).Scan(&admin); err != nil {
		return false, err
	}
	return admin == 1, nil
}

func (r *MembershipRepo) CreateTeam(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	if t.ID == "" {
		t.ID = domain.NewID()
	}
	t.CreatedAt = time.Now().UTC()

	const q = `
		INSERT INTO teams (id, name, created_by, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := r.writeDB.ExecContext(ctx, q, t.ID, t.Name, t.CreatedBy, t.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	return t, nil
}

func (r *MembershipRepo) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	const q = `
		SELECT id, name, created_by, created_at
		FROM teams
		WHERE id = ?`

	var t domain.Team
	err := r.readDB.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("team %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MembershipRepo) ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	const q = `
		SELECT t.id, t.name, t.created_by, t.created_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.name`

	rows, err := r.readDB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *MembershipRepo) DeleteTeam(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("team %q not found", id)
	}
	return nil
}

func (r *MembershipRepo) AddMember(ctx context.Context, m *domain.TeamMembership) error {
	m.CreatedAt = time.Now().UTC()

	const q = `
		INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := r.writeDB.ExecContext(ctx, q, m.TeamID, m.UserID, m.Role, m.CreatedAt); err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *MembershipRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	const q = `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`

	res, err := r.writeDB.ExecContext(ctx, q, teamID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("user %q is not a member of team %q", userID, teamID)
	}
	return nil
}

func (r *MembershipRepo) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMembership, error) {
	const q = `
		SELECT team_id, user_id, role, created_at
		FROM team_members
		WHERE team_id = ?
		ORDER BY created_at, user_id`

	rows, err := r.readDB.QueryContext(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var members []domain.TeamMembership
	for rows.Next() {
		var m domain.TeamMembership
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
