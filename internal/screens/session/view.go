package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/practice"
	sess "github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	v := s.ctrl.Snapshot()
	if !v.HasCard {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No cards to practice"))
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(v, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	b.WriteString(center.Foreground(theme.Text).Bold(true).Render(v.Card.Question + " = ?"))
	b.WriteString("\n\n")
	b.WriteString(center.Render(renderAnswer(v)))
	b.WriteString("\n")
	b.WriteString(center.Render(renderFeedback(v)))
	b.WriteString("\n\n")

	if v.Total > 0 {
		bar := components.NewLearnedBar(v.Learned, v.Total, v.Level, min(width-8, 56))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	if !layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight) {
		pad := components.Keypad{Disabled: v.Feedback == engine.FeedbackCorrect || v.Feedback == engine.FeedbackSlow}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, pad.View()))
	}

	return b.String()
}

func (s *SessionScreen) renderInfoLine(v practice.View, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", s.setName()))

	mode := "Master"
	if v.Mode == sess.ModeTimed {
		mode = "Timed " + layout.FormatCountdown(v.Remaining)
	}
	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s  %s  %s %d/%d",
			v.Level.Name(),
			lipgloss.NewStyle().Foreground(theme.Accent).Render(mode),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			v.Stats.CorrectAnswers, v.Stats.TotalQuestions,
		))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

func renderAnswer(v practice.View) string {
	input := v.Input
	if v.Feedback == engine.FeedbackNone {
		input += "_"
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(12).
		Align(lipgloss.Center).
		Bold(true)
	switch v.Feedback {
	case engine.FeedbackCorrect:
		style = style.BorderForeground(theme.Success).Foreground(theme.Success)
	case engine.FeedbackSlow:
		style = style.BorderForeground(theme.Warning).Foreground(theme.Warning)
	case engine.FeedbackIncorrect:
		style = style.BorderForeground(theme.Error)
	}
	return style.Render(input)
}

func renderFeedback(v practice.View) string {
	switch v.Feedback {
	case engine.FeedbackCorrect:
		msg := "Correct!"
		if v.Outcome != nil && v.Outcome.CardMastered {
			msg += "  " + theme.Badge.Render("★ card mastered at "+v.Level.Name())
		}
		return theme.Correct.Render(msg)
	case engine.FeedbackSlow:
		return theme.Slow.Render("Correct, but try to be faster")
	case engine.FeedbackIncorrect:
		return theme.Incorrect.Render("Not quite, try again")
	}
	return " "
}

// renderError renders an error message with a hint to go back.
func renderError(width, height int, msg string) string {
	content := theme.Incorrect.Render("Could not start practice") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Render(msg) + "\n\n" +
		theme.Hint.Render("press any key to go back")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
