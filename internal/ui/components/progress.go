package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

// LearnedBar shows how many cards of a set are learned. The fill takes the
// color of the level being practiced.
type LearnedBar struct {
	Learned int
	Total   int
	Level   mastery.Level
	Width   int
}

// NewLearnedBar creates a bar for learned of total cards at level.
func NewLearnedBar(learned, total int, level mastery.Level, width int) LearnedBar {
	return LearnedBar{Learned: learned, Total: total, Level: level, Width: width}
}

// Filled is the number of cells drawn as learned in a bar barWidth wide. A
// partly learned set never shows as empty or full.
func (p LearnedBar) Filled(barWidth int) int {
	if p.Total <= 0 || p.Learned <= 0 {
		return 0
	}
	if p.Learned >= p.Total {
		return barWidth
	}
	n := p.Learned * barWidth / p.Total
	return min(max(n, 1), barWidth-1)
}

func (p LearnedBar) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Render("Learned") + "  "
	count := fmt.Sprintf("  %d/%d", max(p.Learned, 0), max(p.Total, 0))

	barWidth := max(p.Width-lipgloss.Width(label)-len(count), 4)
	filled := p.Filled(barWidth)

	fill := lipgloss.NewStyle().Foreground(theme.LevelColor(p.Level))
	empty := lipgloss.NewStyle().Foreground(theme.Border)
	return label +
		fill.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", barWidth-filled)) +
		theme.Hint.Render(count)
}
