package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rowguard/internal/domain"
	"rowguard/internal/metrics"
	"rowguard/internal/policy"
	"rowguard/internal/service/authz"
)

func newCheckCmd() *cobra.Command {
	var (
		file       string
		actor      string
		admin      bool
		resource   string
		op         string
		rowOwner   string
		rowTeam    string
		rowID      string
		teammate   bool
		teamMember bool
		teamAdmin  bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a hypothetical access decision locally",
		Long: `Runs the decision engine against a hypothetical actor, operation and row,
without contacting a server or a database. Membership facts that normally come
from storage are supplied as flags. The outcome is exactly what the server
would decide for the same inputs; the command always exits zero when the
evaluation itself succeeds, allow or deny.`,
		Example: `  # May bob read a credentials row owned by alice, given they share a team?
  rowguard check --actor bob --resource credentials --op select --row-owner alice --teammate

  # May carol delete a team she merely belongs to?
  rowguard check --actor carol --resource teams --op delete --row-team t1 --row-owner alice --team-member

  # Check against a custom policy file
  rowguard check --file policy.yaml --actor bob --resource documents --op update --row-owner bob`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sets := policy.Defaults()
			if file != "" {
				var err error
				sets, err = policy.LoadFile(file)
				if err != nil {
					return err
				}
			}
			registry, err := policy.BuildRegistry(sets)
			if err != nil {
				return err
			}

			facts := &staticFacts{
				teammate:   teammate,
				teamMember: teamMember,
				teamAdmin:  teamAdmin,
			}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			evaluator := authz.NewEvaluator(registry, authz.NewMemberships(facts), noopRecorder{}, logger, metrics.New())

			ctx, end, err := domain.BeginUnit(context.Background(), domain.Identity{
				SubjectID: actor,
				IsAdmin:   admin,
			})
			if err != nil {
				return err
			}
			defer end()

			d, err := evaluator.Evaluate(ctx, resource, domain.Operation(op), domain.Row{
				OwnerID: rowOwner,
				TeamID:  rowTeam,
				ID:      rowID,
			})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]interface{}{
					"actor":        d.Actor,
					"resource":     d.Resource,
					"operation":    string(d.Operation),
					"row_owner_id": d.RowOwnerID,
					"outcome":      string(d.Outcome),
					"reason":       d.Reason,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s (%s)\n", d.Outcome, d.Reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Policy file to evaluate against (built-in rule sets when empty)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting subject (anonymous when empty)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Actor holds the platform admin role")
	cmd.Flags().StringVar(&resource, "resource", "", "Resource name (required)")
	cmd.Flags().StringVar(&op, "op", "", "Operation: select, insert, update or delete (required)")
	cmd.Flags().StringVar(&rowOwner, "row-owner", "", "Owner attribute value of the row")
	cmd.Flags().StringVar(&rowTeam, "row-team", "", "Team the row belongs to")
	cmd.Flags().StringVar(&rowID, "row-id", "", "Row identifier")
	cmd.Flags().BoolVar(&teammate, "teammate", false, "Actor shares a team with the row owner")
	cmd.Flags().BoolVar(&teamMember, "team-member", false, "Actor is a member of the row's team")
	cmd.Flags().BoolVar(&teamAdmin, "team-admin", false, "Actor is an admin of the row's team")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("op")

	return cmd
}

// staticFacts answers membership questions from command-line flags instead
// of storage. The write and listing methods are unreachable from evaluation.
type staticFacts struct {
	teammate   bool
	teamMember bool
	teamAdmin  bool
}

var _ domain.MembershipRepository = (*staticFacts)(nil)

var errLocalFacts = errors.New("membership data is not available in local evaluation")

func (f *staticFacts) SharedTeam(context.Context, string, string) (bool, error) {
	return f.teammate, nil
}

func (f *staticFacts) IsTeamMember(context.Context, string, string) (bool, error) {
	return f.teamMember, nil
}

func (f *staticFacts) IsTeamAdmin(context.Context, string, string) (bool, error) {
	return f.teamAdmin, nil
}

func (f *staticFacts) CreateTeam(context.Context, *domain.Team) (*domain.Team, error) {
	return nil, errLocalFacts
}

func (f *staticFacts) GetTeam(context.Context, string) (*domain.Team, error) {
	return nil, errLocalFacts
}

func (f *staticFacts) ListTeamsForUser(context.Context, string) ([]domain.Team, error) {
	return nil, errLocalFacts
}

func (f *staticFacts) DeleteTeam(context.Context, string) error {
	return errLocalFacts
}

func (f *staticFacts) AddMember(context.Context, *domain.TeamMembership) error {
	return errLocalFacts
}

func (f *staticFacts) RemoveMember(context.Context, string, string) error {
	return errLocalFacts
}

func (f *staticFacts) ListMembers(context.Context, string) ([]domain.TeamMembership, error) {
	return nil, errLocalFacts
}

// noopRecorder drops audit entries. Hypothetical checks must not litter the
// audit trail.
type noopRecorder struct{}

func (noopRecorder) Record(domain.AuditEntry) {}
