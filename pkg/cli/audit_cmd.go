package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// auditFilterFlags holds the query filters shared by the audit subcommands.
type auditFilterFlags struct {
	actor    string
	resource string
	outcome  string
	reason   string
	since    string
	until    string
	limit    int
}

func (f *auditFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.actor, "actor", "", "Filter by acting subject")
	cmd.Flags().StringVar(&f.resource, "resource", "", "Filter by resource name")
	cmd.Flags().StringVar(&f.outcome, "outcome", "", "Filter by outcome (allow, deny)")
	cmd.Flags().StringVar(&f.reason, "reason", "", "Filter by decision reason code")
	cmd.Flags().StringVar(&f.since, "since", "", "Only entries at or after this RFC 3339 timestamp")
	cmd.Flags().StringVar(&f.until, "until", "", "Only entries before this RFC 3339 timestamp")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum entries to return (server default when 0)")
}

func (f *auditFilterFlags) query() url.Values {
	q := url.Values{}
	if f.actor != "" {
		q.Set("actor", f.actor)
	}
	if f.resource != "" {
		q.Set("resource", f.resource)
	}
	if f.outcome != "" {
		q.Set("outcome", f.outcome)
	}
	if f.reason != "" {
		q.Set("reason", f.reason)
	}
	if f.since != "" {
		q.Set("since", f.since)
	}
	if f.until != "" {
		q.Set("until", f.until)
	}
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	return q
}

func newAuditCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the authorization audit trail",
	}

	cmd.AddCommand(newAuditListCmd(client))
	cmd.AddCommand(newAuditSummaryCmd(client))
	return cmd
}

func newAuditListCmd(client *Client) *cobra.Command {
	var filters auditFilterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded authorization decisions",
		Long:  "List audit entries, newest first. Every deny and every admin-override allow is recorded.",
		Example: `  # Recent denials for one subject
  rowguard audit list --actor mallory --outcome deny

  # Denials in a time window, as JSON
  rowguard audit list --since 2026-08-01T00:00:00Z --until 2026-08-02T00:00:00Z -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client.Do("GET", "/audit/entries", filters.query(), nil)
			if err != nil {
				return err
			}
			if err := CheckError(resp); err != nil {
				return err
			}
			body, err := ReadBody(resp)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			var payload struct {
				Data []struct {
					ID         string    `json:"id"`
					Timestamp  time.Time `json:"timestamp"`
					Actor      string    `json:"actor"`
					Resource   string    `json:"resource"`
					Operation  string    `json:"operation"`
					RowOwnerID string    `json:"row_owner_id"`
					TargetID   string    `json:"target_id"`
					Outcome    string    `json:"outcome"`
					Reason     string    `json:"reason"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if getQuiet(cmd) {
				for _, e := range payload.Data {
					_, _ = fmt.Fprintln(os.Stdout, e.ID)
				}
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, payload)
			}

			columns := []string{"time", "actor", "resource", "op", "outcome", "reason", "target"}
			rows := make([][]string, 0, len(payload.Data))
			for _, e := range payload.Data {
				rows = append(rows, []string{
					e.Timestamp.Format(time.RFC3339),
					e.Actor,
					e.Resource,
					e.Operation,
					e.Outcome,
					e.Reason,
					e.TargetID,
				})
			}
			PrintTable(os.Stdout, columns, rows)
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

func newAuditSummaryCmd(client *Client) *cobra.Command {
	var filters auditFilterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate audit entries by resource, reason and outcome",
		Example: `  # What is getting denied, and why
  rowguard audit summary --outcome deny

  # Denial hotspots for one resource in a window
  rowguard audit summary --resource credentials --since 2026-08-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client.Do("GET", "/audit/summary", filters.query(), nil)
			if err != nil {
				return err
			}
			if err := CheckError(resp); err != nil {
				return err
			}
			body, err := ReadBody(resp)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			var payload struct {
				Data []struct {
					Resource string `json:"resource"`
					Reason   string `json:"reason"`
					Outcome  string `json:"outcome"`
					Count    int64  `json:"count"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, payload)
			}

			columns := []string{"resource", "reason", "outcome", "count"}
			rows := make([][]string, 0, len(payload.Data))
			for _, c := range payload.Data {
				rows = append(rows, []string{
					c.Resource,
					c.Reason,
					c.Outcome,
					strconv.FormatInt(c.Count, 10),
				})
			}
			PrintTable(os.Stdout, columns, rows)
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}
