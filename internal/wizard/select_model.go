package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedGlyph = checkedStyle.Render("[x]")
	pendingGlyph  = "[ ]"
)

type selectItem struct {
	label   string
	value   string
	checked bool
}

// selectModel renders either a multi-select (space toggles, enter accepts)
// or a single-select (enter picks the highlighted row).
type selectModel struct {
	title string
	items []selectItem
	multi bool

	cursor    int
	done      bool
	cancelled bool
}

func newSelectModel(title string, items []selectItem, multi bool) selectModel {
	return selectModel{title: title, items: items, multi: multi}
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		if m.multi {
			m.items[m.cursor].checked = !m.items[m.cursor].checked
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		if m.multi {
			glyph := pendingGlyph
			if it.checked {
				glyph = selectedGlyph
			}
			b.WriteString(cursor + glyph + " " + it.label + "\n")
			continue
		}
		b.WriteString(cursor + it.label + "\n")
	}

	if m.multi {
		b.WriteString(helpStyle.Render("space: toggle • enter: confirm • q: cancel"))
	} else {
		b.WriteString(helpStyle.Render("enter: confirm • q: cancel"))
	}
	b.WriteString("\n")
	return b.String()
}
