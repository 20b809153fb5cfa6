package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hiddify/hidyctl/internal/crontab"
)

// ManagedEntry is a crontab line this tool owns on behalf of the bot
type ManagedEntry struct {
	Name string
	Line string
}

// ManagedEntries returns the crontab lines registered for exe: start
// the bot at boot and back up the database nightly. Lines carry the
// executable path, so re-registering after a move is safe.
func ManagedEntries(exe string) []ManagedEntry {
	return []ManagedEntry{
		{Name: "start at boot", Line: fmt.Sprintf("@reboot %s restart", exe)},
		{Name: "nightly backup", Line: fmt.Sprintf("0 3 * * * %s backup create", exe)},
	}
}

// CronCommands returns crontab management commands
func CronCommands(exePath string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Manage crontab entries",
		Long:  "List, add, and remove entries in the host crontab",
	}

	cmd.AddCommand(
		cronListCmd(),
		cronInstallCmd(exePath),
		cronAddCmd(),
		cronRemoveCmd(),
	)

	return cmd
}

func cronListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List crontab entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := crontab.New()

			entries, err := mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Crontab is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCHEDULE\tCOMMAND")
			for _, entry := range entries {
				schedule, command, err := crontab.SplitEntry(entry)
				if err != nil {
					// Non-standard line (env assignment etc), print raw
					fmt.Fprintf(w, "-\t%s\n", entry)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", schedule, command)
			}
			w.Flush()
			return nil
		},
	}
}

func cronInstallCmd(exePath string) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Register the managed entries (boot start, nightly backup)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := crontab.New()

			for _, entry := range ManagedEntries(exePath) {
				added, err := mgr.Register(cmd.Context(), entry.Line)
				if err != nil {
					return fmt.Errorf("register %s: %w", entry.Name, err)
				}
				if added {
					fmt.Printf("✅ Registered %s: %s\n", entry.Name, entry.Line)
				} else {
					fmt.Printf("⚠️  Already registered: %s\n", entry.Name)
				}
			}
			return nil
		},
	}
}

func cronAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <entry>",
		Short: "Add a crontab entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := strings.Join(args, " ")

			mgr := crontab.New()
			added, err := mgr.Register(cmd.Context(), entry)
			if err != nil {
				return err
			}
			if !added {
				fmt.Println("⚠️  Entry already present")
				return nil
			}
			fmt.Printf("✅ Added: %s\n", entry)
			return nil
		},
	}
}

func cronRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <match>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove entries containing <match>",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := crontab.New()

			removed, err := mgr.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Println("No matching entries.")
				return nil
			}
			fmt.Printf("✅ Removed %d entr%s\n", removed, pluralY(removed))
			return nil
		},
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
