package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/bulk"
	"sitegrab-cli/internal/wizard"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd(Deps{})

	want := []string{
		"scrape", "map", "search", "crawl", "agent",
		"browser", "scrape-site", "account", "jobs",
	}
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		require.True(t, names[name], "missing command %q", name)
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "usage error", err: errUsage, want: 2},
		{name: "user aborted run", err: bulk.ErrAborted, want: 0},
		{name: "wrapped abort", err: fmt.Errorf("run: %w", bulk.ErrAborted), want: 0},
		{name: "wizard cancelled", err: wizard.ErrCancelled, want: 0},
		{name: "plain failure", err: errors.New("boom"), want: 1},
		{name: "unknown command", err: errors.New(`unknown command "frobnicate" for "sitegrab"`), want: 2},
	}

	for _, tc := range cases {
		root := newRootCmd(Deps{})
		var out, stderr bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)

		require.Equal(t, tc.want, exitCode(root, &stderr, tc.err), tc.name)
	}
}

func TestRequireAPIKey(t *testing.T) {
	require.Error(t, requireAPIKey(Deps{}))

	d := Deps{}
	d.Cfg.APIKey = "sk-test"
	require.NoError(t, requireAPIKey(d))
}

func TestPrimaryContent(t *testing.T) {
	doc := &api.Document{
		Markdown: "# md",
		HTML:     "<p>html</p>",
		RawHTML:  "<html>raw</html>",
		Summary:  "short",
	}

	require.Equal(t, "# md", primaryContent(nil, doc))
	require.Equal(t, "# md", primaryContent([]string{api.FormatMarkdown}, doc))
	require.Equal(t, "<p>html</p>", primaryContent([]string{api.FormatHTML}, doc))
	require.Equal(t, "short", primaryContent([]string{api.FormatSummary}, doc))

	noHTML := &api.Document{RawHTML: "<html>raw</html>"}
	require.Equal(t, "<html>raw</html>", primaryContent([]string{api.FormatRawHTML}, noHTML))
}
