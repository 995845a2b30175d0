package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/ui/theme"
)

const arcadeTitleCompact = "F · L · A · S · H · M · A · T · H"

func renderTitle(cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(arcadeTitleCompact))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(mastered, learned, cards, cw int, compact bool) string {
	masteredStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	learnedStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s",
			masteredStyle.Render(fmt.Sprintf("★%d", mastered)),
			learnedStyle.Render(fmt.Sprintf("✓%d/%d", learned, cards)))
	} else {
		stats = fmt.Sprintf("%s  %s",
			masteredStyle.Render(fmt.Sprintf("★ %d SETS MASTERED", mastered)),
			learnedStyle.Render(fmt.Sprintf("✓ %d/%d CARDS LEARNED", learned, cards)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw-2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderSetList renders one line per set: name, mastery badge and learned
// count. The selected row is highlighted.
func renderSetList(rows []setRow, selected, cw int) string {
	if len(rows) == 0 {
		return lipgloss.NewStyle().
			Width(cw).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("No sets yet. Add one with `flashmath sets add`.")
	}

	nameWidth := max(cw-24, 10)
	var lines []string
	for i, r := range rows {
		name := r.name
		if len([]rune(name)) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		learned := fmt.Sprintf("%d/%d", r.learned, r.total)
		line := fmt.Sprintf("%-*s %-9s %7s", nameWidth, name, r.badge, learned)
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render("▸ "+line))
		} else {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("  "+line))
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Render(strings.Join(lines, "\n"))
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
