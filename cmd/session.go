package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	sessShowFormat string
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage saved profiles",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := sessionStore().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No sessions found")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATASET\tROWS\tCOLUMNS\tUPDATED")
		for _, s := range list {
			name, rows, cols := "", 0, 0
			if s.Profile != nil {
				name, rows, cols = s.Profile.Name, s.Profile.RowCount, len(s.Profile.Columns)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, name, rows, cols, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the profile stored in a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(sessShowFormat)
		if err != nil {
			return err
		}
		s, err := sessionStore().Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if format == "markdown" {
			fmt.Fprintf(out, "Session: %s\nSource: %s\n\n", s.ID, s.Source)
			return renderProfile(out, s.Profile, format)
		}
		return encode(out, s, format)
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := sessionStore()
		s, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if err := st.Delete(s.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted session %s\n", s.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionShowCmd.Flags().StringVarP(&sessShowFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
}
