package app

import (
	"context"
	"fmt"
	"log/slog"

	"rowguard/internal/domain"
)

// seedDemo populates an empty store with demo subjects, a team, and
// credentials so the API is explorable right after first boot. Idempotent;
// backs off when alice already belongs to a team.
//
// Every write goes through the services under the identity that owns the
// data, so the demo rows carry the same ownership facts real rows would.
func seedDemo(ctx context.Context, logger *slog.Logger, svcs Services, memberships domain.MembershipRepository) error {

	// Check if already seeded
	existing, err := memberships.ListTeamsForUser(ctx, "alice")
	if err != nil {
		return fmt.Errorf("probe for demo data: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	asSubject := func(subject string, admin bool, fn func(ctx context.Context) error) error {
		uctx, end, err := domain.BeginUnit(ctx, domain.Identity{SubjectID: subject, IsAdmin: admin})
		if err != nil {
			return err
		}
		defer end()
		return fn(uctx)
	}

	// --- Team with alice as admin, bob and carol as members ---
	var teamID string
	err = asSubject("alice", false, func(ctx context.Context) error {
		t, err := svcs.Team.Create(ctx, domain.CreateTeamRequest{Name: "platform"})
		if err != nil {
			return fmt.Errorf("create platform team: %w", err)
		}
		teamID = t.ID

		if err := svcs.Team.AddMember(ctx, domain.AddTeamMemberRequest{
			TeamID: t.ID, UserID: "bob", Role: domain.RoleMember,
		}); err != nil {
			return fmt.Errorf("enroll bob: %w", err)
		}
		if err := svcs.Team.AddMember(ctx, domain.AddTeamMemberRequest{
			TeamID: t.ID, UserID: "carol", Role: domain.RoleMember,
		}); err != nil {
			return fmt.Errorf("enroll carol: %w", err)
		}

		if _, err := svcs.Credential.Create(ctx, domain.CreateCredentialRequest{
			Name: "prod-db-password", Secret: "demo-s3cr3t",
		}); err != nil {
			return fmt.Errorf("create alice credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// --- A credential bob owns, visible to his teammates ---
	err = asSubject("bob", false, func(ctx context.Context) error {
		if _, err := svcs.Credential.Create(ctx, domain.CreateCredentialRequest{
			Name: "deploy-token", Secret: "demo-t0ken",
		}); err != nil {
			return fmt.Errorf("create bob credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// --- Admin API key so the ops surface is usable out of the box ---
	var rawKey string
	err = asSubject("root", true, func(ctx context.Context) error {
		raw, _, err := svcs.APIKey.Create(ctx, domain.CreateAPIKeyRequest{
			SubjectID: "root", Name: "demo admin key", IsAdmin: true,
		})
		if err != nil {
			return fmt.Errorf("mint demo admin key: %w", err)
		}
		rawKey = raw
		return nil
	})
	if err != nil {
		return err
	}

	// Raw key material is recoverable nowhere else, so the demo key is
	// logged exactly once, here.
	logger.Info("seeded demo data",
		"team_id", teamID,
		"subjects", "alice, bob, carol",
		"admin_api_key", rawKey,
	)
	return nil
}
