package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/envutil"
)

func newCrawlCmd(d Deps) *cobra.Command {
	var (
		limit    int
		formats  []string
		onlyMain bool
		wait     bool
		pollSecs int
		outFile  string
	)

	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Start a server-side crawl of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			job, err := d.Client.Crawl(cmd.Context(), api.CrawlParams{
				URL:             args[0],
				Limit:           limit,
				Formats:         formats,
				OnlyMainContent: onlyMain,
			})
			if err != nil {
				return err
			}

			if !wait {
				fmt.Fprintf(cmd.ErrOrStderr(), "Crawl started. Check progress with: sitegrab crawl status %s\n", job.ID)
				return writeOutput(cmd, outFile, []byte(job.ID+"\n"))
			}

			done, err := pollCrawl(cmd.Context(), d, job.ID, time.Duration(pollSecs)*time.Second, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeJSON(cmd, outFile, done.Documents)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum pages to crawl (0 = server default)")
	cmd.Flags().StringSliceVar(&formats, "format", []string{api.FormatMarkdown}, "Output formats per page")
	cmd.Flags().BoolVar(&onlyMain, "only-main-content", false, "Strip navigation, footers and boilerplate")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the crawl finishes and print the documents")
	cmd.Flags().IntVar(&pollSecs, "poll-interval", envutil.Int(os.Getenv, "SITEGRAB_POLL_INTERVAL_SECONDS", 5), "Seconds between status polls")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write output to a file instead of stdout")

	cmd.AddCommand(newCrawlStatusCmd(d))
	return cmd
}

func newCrawlStatusCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a crawl job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}
			job, err := d.Client.CrawlStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, "", job)
		},
	}
}

// pollCrawl sleeps between status calls until the job reaches a terminal
// state; progress lines go to the status stream.
func pollCrawl(ctx context.Context, d Deps, jobID string, interval time.Duration, status io.Writer) (*api.CrawlJob, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		job, err := d.Client.CrawlStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case api.StatusCompleted:
			return job, nil
		case api.StatusFailed, api.StatusCancelled:
			return nil, fmt.Errorf("crawl %s ended with status %s", jobID, job.Status)
		}

		fmt.Fprintf(status, "Crawling... %d/%d pages\n", job.Completed, job.Total)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
