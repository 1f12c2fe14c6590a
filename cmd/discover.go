package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var discoverJSON bool

var discoverCmd = &cobra.Command{
	Use:   "discover <topic> [topic...]",
	Short: "Find media contacts for a topic set",
	Long:  "Runs the recipient discovery cascade (news bylines, web search, directories) and prints the ranked contact list without sending anything.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("discover"); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		recipients := env.engine.Discover(cmd.Context(), args)
		out := cmd.OutOrStdout()

		if discoverJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recipients)
		}

		if len(recipients) == 0 {
			fmt.Fprintln(out, "No contacts found. Try broader topics.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tEMAIL\tROLE\tPUBLICATION\tREGION")
		for _, r := range recipients {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Email, r.Role, r.Publication, r.Region)
		}
		return tw.Flush()
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(discoverCmd)
}
