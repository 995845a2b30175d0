package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/ui/theme"
)

// keypadRows is the on-screen layout; ⌫ and ⏎ stand for backspace and enter.
var keypadRows = [][]string{
	{"1", "2", "3"},
	{"4", "5", "6"},
	{"7", "8", "9"},
	{"⌫", "0", "⏎"},
}

// Keypad renders the numeric answer keypad. It is display only; the
// practice screen maps physical keys to the same buttons.
type Keypad struct {
	Disabled bool
}

// View renders the keypad grid.
func (k Keypad) View() string {
	style := theme.KeypadKey
	if k.Disabled {
		style = theme.KeypadKeyDisabled
	}
	rows := make([]string, 0, len(keypadRows))
	for _, r := range keypadRows {
		keys := make([]string, 0, len(r))
		for _, label := range r {
			keys = append(keys, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, keys...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}
