package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
)

func newMapCmd(d Deps) *cobra.Command {
	var (
		search     string
		subdomains bool
		limit      int
		outFile    string
	)

	cmd := &cobra.Command{
		Use:   "map <url>",
		Short: "Discover the URLs of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			links, err := d.Client.Map(cmd.Context(), api.MapParams{
				URL:               args[0],
				Search:            search,
				IncludeSubdomains: subdomains,
				Limit:             limit,
			})
			if err != nil {
				return err
			}

			out := strings.Join(links, "\n")
			if out != "" {
				out += "\n"
			}
			return writeOutput(cmd, outFile, []byte(out))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only return URLs matching this query")
	cmd.Flags().BoolVar(&subdomains, "include-subdomains", false, "Include subdomains of the site")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum URLs to return (0 = server default)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write output to a file instead of stdout")
	return cmd
}
