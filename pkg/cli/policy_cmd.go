package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rowguard/internal/policy"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with declarative policy files",
	}

	cmd.AddCommand(newPolicyValidateCmd())
	return cmd
}

func newPolicyValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a policy file offline",
		Long: `Reads a YAML policy file and checks it the same way the server does at boot:
every resource must declare a complete, coherent rule set and no resource may
appear twice. Nothing is sent to the server.`,
		Example: `  rowguard policy validate --file policy.yaml
  rowguard policy validate --file policy.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sets, err := policy.LoadFile(file)
			var registry *policy.Registry
			if err == nil {
				registry, err = policy.BuildRegistry(sets)
			}

			if err != nil {
				if getOutputFormat(cmd) == "json" {
					if jerr := PrintJSON(os.Stdout, map[string]interface{}{
						"valid": false,
						"error": err.Error(),
					}); jerr != nil {
						return jerr
					}
					os.Exit(1)
				}
				fmt.Fprintf(os.Stderr, "Policy is invalid: %v\n", err)
				os.Exit(1)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]interface{}{
					"valid":     true,
					"resources": registry.Resources(),
				})
			}

			_, _ = fmt.Fprintf(os.Stdout, "Policy is valid (%d resources).\n", len(sets))
			columns := []string{"resource", "ownership", "owner attribute", "select", "insert", "update", "delete"}
			rows := make([][]string, 0, len(sets))
			for _, rs := range sets {
				ownership := "user"
				if rs.TeamOwned {
					ownership = "team"
				}
				rows = append(rows, []string{
					rs.Resource,
					ownership,
					rs.OwnerAttribute,
					string(rs.Select),
					string(rs.Insert),
					string(rs.Update),
					string(rs.Delete),
				})
			}
			PrintTable(os.Stdout, columns, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "policy.yaml", "Path to the policy file")
	return cmd
}
