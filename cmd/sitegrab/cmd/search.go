package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
)

func newSearchCmd(d Deps) *cobra.Command {
	var (
		limit   int
		asJSON  bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web through the scraping service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			query := ""
			for i, a := range args {
				if i > 0 {
					query += " "
				}
				query += a
			}

			results, err := d.Client.Search(cmd.Context(), api.SearchParams{Query: query, Limit: limit})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, outFile, results)
			}

			var out string
			for _, r := range results {
				out += fmt.Sprintf("%s\n  %s\n", r.Title, r.URL)
				if r.Description != "" {
					out += fmt.Sprintf("  %s\n", r.Description)
				}
			}
			return writeOutput(cmd, outFile, []byte(out))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write output to a file instead of stdout")
	return cmd
}
