package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show remaining credits and concurrency for the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			acct, err := d.Client.Account(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Remaining credits: %d\n", acct.RemainingCredits)
			fmt.Fprintf(cmd.OutOrStdout(), "Max concurrency:   %d\n", acct.MaxConcurrency)
			return nil
		},
	}
}
