package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/envutil"
)

func newAgentCmd(d Deps) *cobra.Command {
	var (
		urls     []string
		wait     bool
		pollSecs int
		outFile  string
	)

	cmd := &cobra.Command{
		Use:   "agent <prompt>",
		Short: "Run a server-side browsing agent with a natural-language task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			job, err := d.Client.Agent(cmd.Context(), api.AgentParams{
				Prompt: strings.Join(args, " "),
				URLs:   urls,
			})
			if err != nil {
				return err
			}

			if !wait {
				fmt.Fprintf(cmd.ErrOrStderr(), "Agent started (job %s)\n", job.ID)
				return writeOutput(cmd, outFile, []byte(job.ID+"\n"))
			}

			interval := time.Duration(pollSecs) * time.Second
			if interval <= 0 {
				interval = 5 * time.Second
			}
			for {
				job, err = d.Client.AgentStatus(cmd.Context(), job.ID)
				if err != nil {
					return err
				}
				switch job.Status {
				case api.StatusCompleted:
					return writeOutput(cmd, outFile, []byte(job.Output+"\n"))
				case api.StatusFailed, api.StatusCancelled:
					return fmt.Errorf("agent job %s ended with status %s", job.ID, job.Status)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Agent working... (%s)\n", job.Status)
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(interval):
				}
			}
		},
	}

	cmd.Flags().StringSliceVar(&urls, "url", nil, "Seed URLs for the agent")
	cmd.Flags().BoolVar(&wait, "wait", true, "Poll until the agent finishes")
	cmd.Flags().IntVar(&pollSecs, "poll-interval", envutil.Int(os.Getenv, "SITEGRAB_POLL_INTERVAL_SECONDS", 5), "Seconds between status polls")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write output to a file instead of stdout")
	return cmd
}
