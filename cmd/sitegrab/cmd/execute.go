package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"sitegrab-cli/config"
	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/browser"
	"sitegrab-cli/internal/bulk"
	"sitegrab-cli/internal/history"
	"sitegrab-cli/internal/wizard"
)

var errUsage = errors.New("usage")

// Deps is the object graph assembled in main via fx.
type Deps struct {
	fx.In

	Cfg     config.Config
	Logger  *zap.SugaredLogger
	Client  *api.Client
	Manager *browser.Manager
	History history.Opener
}

// Execute runs the root command and maps outcomes to process exit codes:
// 0 success or user abort, 1 failure, 2 usage.
func Execute(d Deps) int {
	root := newRootCmd(d)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	return exitCode(root, os.Stderr, root.Execute())
}

func exitCode(root *cobra.Command, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	if errors.Is(err, bulk.ErrAborted) || errors.Is(err, wizard.ErrCancelled) {
		fmt.Fprintln(stderr, "Aborted.")
		return 0
	}
	fmt.Fprintln(stderr, "ERROR:", err)
	if strings.HasPrefix(err.Error(), "unknown command") {
		_ = root.Help()
		return 2
	}
	return 1
}

func newRootCmd(d Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sitegrab",
		Short:         "Command-line client for the Sitegrab scraping API",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}

	rootCmd.AddCommand(
		newScrapeCmd(d),
		newMapCmd(d),
		newSearchCmd(d),
		newCrawlCmd(d),
		newAgentCmd(d),
		newBrowserCmd(d),
		newScrapeSiteCmd(d),
		newAccountCmd(d),
		newJobsCmd(d),
	)
	return rootCmd
}

// requireAPIKey guards commands that hit the remote API.
func requireAPIKey(d Deps) error {
	if strings.TrimSpace(d.Cfg.APIKey) == "" {
		return errors.New("missing SITEGRAB_API_KEY")
	}
	return nil
}
