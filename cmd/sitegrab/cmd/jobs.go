package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newJobsCmd(d Deps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show past bulk scrape runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := d.History()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No runs recorded")
				return nil
			}

			for _, r := range runs {
				line := fmt.Sprintf("%s  %s  %d/%d", r.StartedAt.Local().Format(time.RFC3339), r.Site, r.Completed, r.Total)
				if r.Failed > 0 {
					line += fmt.Sprintf(" (%d failed)", r.Failed)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}
