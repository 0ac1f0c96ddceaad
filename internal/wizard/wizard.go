// Package wizard is the interactive option picker used when a bulk scrape is
// invoked with no explicit flags on a real terminal. It only produces an
// options value; the orchestrator never prompts.
package wizard

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/bulk"
)

// ErrCancelled means the operator backed out of the wizard.
var ErrCancelled = errors.New("wizard cancelled")

// IsInteractive reports whether prompting is possible: stdin must be a
// terminal, and stderr too since prompts render there to keep stdout clean.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// Run walks the operator through format, content and path-filter choices for
// the discovered URL set and returns the refined options.
func Run(urls []string, defaults bulk.Options) (bulk.Options, error) {
	formats, err := multiSelect(
		"Output formats",
		api.KnownFormats,
		[]string{api.FormatMarkdown},
	)
	if err != nil {
		return defaults, err
	}
	if len(formats) == 0 {
		formats = []string{api.FormatMarkdown}
	}
	defaults.Formats = formats

	onlyMain, err := yesNo("Keep only the main content of each page?", true)
	if err != nil {
		return defaults, err
	}
	defaults.OnlyMainContent = onlyMain

	ranked := bulk.RankFirstSegments(urls)
	if len(ranked) > 1 {
		labels := make([]string, len(ranked))
		values := make([]string, len(ranked))
		for i, sc := range ranked {
			labels[i] = fmt.Sprintf("%s (%d)", sc.Segment, sc.Count)
			values[i] = sc.Segment
		}
		chosen, err := multiSelectLabeled("Limit to path prefixes (none = all)", labels, values, nil)
		if err != nil {
			return defaults, err
		}
		defaults.IncludePaths = chosen
	}

	return defaults, nil
}

func multiSelect(title string, options, preselected []string) ([]string, error) {
	return multiSelectLabeled(title, options, options, preselected)
}

func multiSelectLabeled(title string, labels, values, preselected []string) ([]string, error) {
	pre := make(map[string]bool, len(preselected))
	for _, v := range preselected {
		pre[v] = true
	}

	items := make([]selectItem, len(labels))
	for i := range labels {
		items[i] = selectItem{label: labels[i], value: values[i], checked: pre[values[i]]}
	}

	m := newSelectModel(title, items, true)
	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, err
	}

	result := final.(selectModel)
	if result.cancelled {
		return nil, ErrCancelled
	}
	var chosen []string
	for _, it := range result.items {
		if it.checked {
			chosen = append(chosen, it.value)
		}
	}
	return chosen, nil
}

func yesNo(title string, def bool) (bool, error) {
	items := []selectItem{
		{label: "Yes", value: "y"},
		{label: "No", value: "n"},
	}
	m := newSelectModel(title, items, false)
	if !def {
		m.cursor = 1
	}

	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return def, err
	}

	result := final.(selectModel)
	if result.cancelled {
		return def, ErrCancelled
	}
	return result.items[result.cursor].value == "y", nil
}
