package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandEntry describes one runnable CLI command for introspection output.
type CommandEntry struct {
	Path    string      `json:"path"`
	Group   string      `json:"group"`
	Short   string      `json:"short"`
	Long    string      `json:"long,omitempty"`
	Example string      `json:"example,omitempty"`
	Args    string      `json:"args,omitempty"`
	Flags   []FlagEntry `json:"flags,omitempty"`
}

// FlagEntry describes one flag of a CLI command for introspection output.
type FlagEntry struct {
	Name     string `json:"name"`
	Short    string `json:"shorthand,omitempty"`
	Type     string `json:"type"`
	Default  string `json:"default,omitempty"`
	Usage    string `json:"usage,omitempty"`
	Required bool   `json:"required,omitempty"`
}

func newCommandsCmd() *cobra.Command {
	var (
		filter string
		group  string
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List every CLI command with its flags and descriptions",
		Long: `Walks the command tree and lists every runnable command with its path,
description, flags and examples. Runs entirely offline.

Useful for scripting and for tooling that needs to discover the whole CLI
surface in a single call.`,
		Example: `  # List all commands
  rowguard commands

  # Find commands that touch the audit trail
  rowguard commands --filter audit

  # Full metadata for the policy commands, as JSON
  rowguard commands --group policy --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := walkCommands(cmd.Root(), "")

			if group != "" {
				var kept []CommandEntry
				for _, e := range entries {
					if e.Group == group {
						kept = append(kept, e)
					}
				}
				entries = kept
			}
			if filter != "" {
				needle := strings.ToLower(filter)
				var kept []CommandEntry
				for _, e := range entries {
					if strings.Contains(strings.ToLower(searchText(e)), needle) {
						kept = append(kept, e)
					}
				}
				entries = kept
			}

			if getQuiet(cmd) {
				for _, e := range entries {
					_, _ = os.Stdout.WriteString(e.Path + "\n")
				}
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, entries)
			}

			columns := []string{"path", "group", "description"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.Group, e.Short})
			}
			PrintTable(os.Stdout, columns, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command paths, descriptions and flag names")
	cmd.Flags().StringVar(&group, "group", "", "Only commands under this top-level group (e.g. audit, policy)")

	return cmd
}

// searchText is the haystack --filter matches against: the command path,
// both description fields and every flag name.
func searchText(e CommandEntry) string {
	parts := []string{e.Path, e.Short, e.Long}
	for _, f := range e.Flags {
		parts = append(parts, f.Name)
	}
	return strings.Join(parts, " ")
}

// walkCommands collects the runnable leaves of the command tree in cobra's
// display order. Hidden commands, help and shell completion are left out.
func walkCommands(cmd *cobra.Command, parentPath string) []CommandEntry {
	var entries []CommandEntry

	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}

		childPath := child.Name()
		if parentPath != "" {
			childPath = parentPath + " " + child.Name()
		}

		if child.HasSubCommands() {
			entries = append(entries, walkCommands(child, childPath)...)
			continue
		}

		// Positional args are whatever follows the command name in Use.
		args := ""
		if useParts := strings.Fields(child.Use); len(useParts) > 1 {
			args = strings.Join(useParts[1:], " ")
		}

		entries = append(entries, CommandEntry{
			Path:    childPath,
			Group:   strings.SplitN(childPath, " ", 2)[0],
			Short:   child.Short,
			Long:    child.Long,
			Example: child.Example,
			Args:    args,
			Flags:   collectFlags(child),
		})
	}

	return entries
}

// collectFlags gathers the command's own flag metadata; inherited persistent
// flags such as --output are not repeated on every entry.
func collectFlags(cmd *cobra.Command) []FlagEntry {
	var flags []FlagEntry
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		entry := FlagEntry{
			Name:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		}
		if ann, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(ann) > 0 && ann[0] == "true" {
			entry.Required = true
		}
		flags = append(flags, entry)
	})
	return flags
}
