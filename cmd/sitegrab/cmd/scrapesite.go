package cmd

import (
	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/bulk"
	"sitegrab-cli/internal/wizard"
)

func newScrapeSiteCmd(d Deps) *cobra.Command {
	var opts bulk.Options
	var yes bool

	cmd := &cobra.Command{
		Use:   "scrape-site <url>",
		Short: "Map a site and scrape every discovered URL into an output tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			opts.SkipConfirmation = yes
			if opts.OutputDir == "" {
				opts.OutputDir = d.Cfg.OutputDir
			}

			orch := bulk.NewOrchestrator(d.Client, d.Logger)

			// The wizard runs only when the operator made no scrape
			// choices and is on a real terminal. Detection is by value:
			// an explicit --format markdown is still the default
			// selection.
			if isDefaultScrapeSelection(opts) && wizard.IsInteractive() {
				orch.Wizard = wizard.Run
			}

			if store, err := d.History(); err != nil {
				d.Logger.Warnw("run history unavailable", "err", err)
			} else {
				defer store.Close()
				orch.Recorder = store
			}

			return orch.Run(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Formats, "format", nil, "Output formats (default markdown)")
	cmd.Flags().BoolVar(&opts.Screenshot, "screenshot", false, "Also capture a screenshot of each page")
	cmd.Flags().BoolVar(&opts.OnlyMainContent, "only-main-content", false, "Strip navigation and boilerplate")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Scrape at most this many URLs")
	cmd.Flags().StringSliceVar(&opts.IncludePaths, "include-path", nil, "Keep only URLs whose path starts with one of these prefixes")
	cmd.Flags().StringSliceVar(&opts.ExcludePaths, "exclude-path", nil, "Drop URLs whose path starts with one of these prefixes")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Narrow discovery to URLs matching this query")
	cmd.Flags().BoolVar(&opts.IncludeSubdomains, "include-subdomains", false, "Also discover subdomain URLs")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Root directory for output bundles")
	return cmd
}

// isDefaultScrapeSelection reports whether the scrape options are untouched:
// no format beyond the markdown default, and screenshot, main-content,
// limit and path filters all at their zero values.
func isDefaultScrapeSelection(opts bulk.Options) bool {
	if len(opts.Formats) > 1 {
		return false
	}
	if len(opts.Formats) == 1 && opts.Formats[0] != api.FormatMarkdown {
		return false
	}
	return !opts.Screenshot &&
		!opts.OnlyMainContent &&
		opts.Limit == 0 &&
		len(opts.IncludePaths) == 0 &&
		len(opts.ExcludePaths) == 0
}
