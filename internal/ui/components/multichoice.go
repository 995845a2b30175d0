package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/ui/theme"
)

// Choice is one option of a MultiChoice.
type Choice struct {
	Label    string
	Disabled bool
}

// MultiChoice is a labelled single-choice row navigated with left/right.
// Disabled choices are shown but cannot be selected.
type MultiChoice struct {
	Label    string
	Options  []Choice
	Selected int
	Focused  bool
}

// NewMultiChoice creates a selector on the first enabled option at or after
// selected.
func NewMultiChoice(label string, options []Choice, selected int) MultiChoice {
	m := MultiChoice{Label: label, Options: options, Selected: -1}
	for i := max(selected, 0); i < len(options); i++ {
		if !options[i].Disabled {
			m.Selected = i
			break
		}
	}
	if m.Selected < 0 {
		for i, o := range options {
			if !o.Disabled {
				m.Selected = i
				break
			}
		}
	}
	return m
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the selection when focused.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if !m.Focused {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "left", "h":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Options[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "right", "l":
		for i := m.Selected + 1; i < len(m.Options); i++ {
			if !m.Options[i].Disabled {
				m.Selected = i
				break
			}
		}
	}
	return m, nil
}

// Valid reports whether an enabled option is selected.
func (m MultiChoice) Valid() bool {
	return m.Selected >= 0 && m.Selected < len(m.Options) && !m.Options[m.Selected].Disabled
}

// View renders the label and the options on one line.
func (m MultiChoice) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(10)
	if m.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}

	parts := make([]string, 0, len(m.Options))
	for i, o := range m.Options {
		switch {
		case o.Disabled:
			parts = append(parts, theme.Locked.Render(" "+o.Label+" "))
		case i == m.Selected && m.Focused:
			parts = append(parts, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render("▸"+o.Label+" "))
		case i == m.Selected:
			parts = append(parts, theme.Selected.Render("▸"+o.Label+" "))
		default:
			parts = append(parts, theme.Unselected.Render(" "+o.Label+" "))
		}
	}
	return labelStyle.Render(m.Label) + strings.Join(parts, " ")
}
