package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/browser"
	"sitegrab-cli/internal/pkg/cdputil"
)

func newBrowserCmd(d Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browser",
		Short: "Manage remote browser sessions",
	}
	cmd.AddCommand(
		newBrowserLaunchCmd(d),
		newBrowserExecCmd(d),
		newBrowserListCmd(d),
		newBrowserCloseCmd(d),
		newBrowserStatusCmd(d),
	)
	return cmd
}

func newBrowserLaunchCmd(d Deps) *cobra.Command {
	var (
		ttl           int
		inactivityTTL int
		stream        bool
		verify        bool
	)

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a browser session and remember it for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			sess, err := d.Manager.Launch(cmd.Context(), api.BrowserLaunchParams{
				TTL:           ttl,
				InactivityTTL: inactivityTTL,
				Stream:        stream,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session:  %s\n", sess.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "CDP URL:  %s\n", sess.CDPURL)
			if sess.LiveViewURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Live view: %s\n", sess.LiveViewURL)
			}

			if verify {
				probe, err := cdputil.VersionURL(sess.CDPURL)
				if err != nil {
					return err
				}
				if _, err := cdputil.CheckReachable(cmd.Context(), probe, 5*time.Second); err != nil {
					return fmt.Errorf("session launched but CDP endpoint not reachable: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "CDP endpoint reachable")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&ttl, "ttl", 0, "Session lifetime in seconds")
	cmd.Flags().IntVar(&inactivityTTL, "inactivity-ttl", 0, "Idle timeout in seconds")
	cmd.Flags().BoolVar(&stream, "stream", false, "Request a live view stream")
	cmd.Flags().BoolVar(&verify, "verify", false, "Probe the CDP endpoint after launch")
	return cmd
}

func newBrowserExecCmd(d Deps) *cobra.Command {
	var (
		sessionID string
		lang      string
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "exec <code>",
		Short: "Run code against a browser session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			req := browser.ExecuteRequest{
				SessionID: sessionID,
				Code:      strings.Join(args, " "),
				Language:  lang,
				RawBash:   raw,
			}

			var (
				res *api.ExecuteResult
				err error
			)
			if sessionID == "" {
				res, err = d.Manager.QuickExecute(cmd.Context(), req)
			} else {
				res, err = d.Manager.Execute(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			if res.Error != "" {
				if res.Result != "" {
					fmt.Fprintln(cmd.OutOrStdout(), res.Result)
				}
				return errors.New(res.Error)
			}
			if res.Result != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (defaults to the stored session)")
	cmd.Flags().StringVar(&lang, "lang", browser.LangPython, "Code language: python, node or bash")
	cmd.Flags().BoolVar(&raw, "raw", false, "Run bash code verbatim, without the sandbox tool prefix")
	return cmd
}

func newBrowserListCmd(d Deps) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List browser sessions on the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			sessions, err := d.Manager.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No sessions")
				return nil
			}

			stored, ok, _ := d.Manager.Current()
			for _, s := range sessions {
				marker := " "
				if ok && s.ID == stored.ID {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s", marker, s.ID, s.Status)
				if !s.ExpiresAt.IsZero() {
					fmt.Fprintf(cmd.OutOrStdout(), "  expires %s", s.ExpiresAt.Format(time.RFC3339))
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by session status")
	return cmd
}

func newBrowserCloseCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "close [session-id]",
		Short: "Close a browser session (the stored one when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(d); err != nil {
				return err
			}

			var override string
			if len(args) == 1 {
				override = args[0]
			}
			id, err := d.Manager.Close(cmd.Context(), override)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %s\n", id)
			return nil
		},
	}
}

func newBrowserStatusCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and probe its CDP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok, err := d.Manager.Current()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No stored session. Launch one with 'sitegrab browser launch'.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "CDP URL: %s\n", rec.CDPURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", rec.CreatedAt.Format(time.RFC3339))

			probe, err := cdputil.VersionURL(rec.CDPURL)
			if err != nil {
				return err
			}
			if _, err := cdputil.CheckReachable(cmd.Context(), probe, 5*time.Second); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Reachable: no (%v)\n", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reachable: yes")
			return nil
		},
	}
}
