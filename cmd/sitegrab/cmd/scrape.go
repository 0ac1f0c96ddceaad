package cmd

import (
	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
)

func newScrapeCmd(d Deps) *cobra.Command {
	var (
		formats    []string
		onlyMain   bool
		screenshot bool
		asJSON     bool
		outFile    string
	)

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a single URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			reqFormats := append([]string(nil), formats...)
			if screenshot {
				reqFormats = append(reqFormats, api.FormatScreenshot)
			}

			doc, err := d.Client.Scrape(cmd.Context(), api.ScrapeParams{
				URL:             args[0],
				Formats:         reqFormats,
				OnlyMainContent: onlyMain,
			})
			if err != nil {
				return err
			}

			if asJSON || len(reqFormats) > 1 {
				return writeJSON(cmd, outFile, doc)
			}
			return writeOutput(cmd, outFile, []byte(primaryContent(reqFormats, doc)))
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", []string{api.FormatMarkdown}, "Output formats (markdown, html, rawHtml, links, images, summary, screenshot, json)")
	cmd.Flags().BoolVar(&onlyMain, "only-main-content", false, "Strip navigation, footers and boilerplate")
	cmd.Flags().BoolVar(&screenshot, "screenshot", false, "Also capture a screenshot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write output to a file instead of stdout")
	return cmd
}

// primaryContent picks the text body for a single-format scrape.
func primaryContent(formats []string, doc *api.Document) string {
	format := api.FormatMarkdown
	if len(formats) > 0 {
		format = formats[0]
	}
	switch format {
	case api.FormatHTML, api.FormatRawHTML:
		if doc.HTML != "" {
			return doc.HTML
		}
		return doc.RawHTML
	case api.FormatSummary:
		return doc.Summary
	default:
		return doc.Markdown
	}
}
