package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary   *session.Summary
	setName   string
	endReason string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. endReason is the practice end reason
// ("time-up", "mastered", "user"...).
func New(summary *session.Summary, setName, endReason string) *SummaryScreen {
	return &SummaryScreen{summary: summary, setName: setName, endReason: endReason}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	if s.summary == nil {
		return ""
	}
	button := components.ArcadeButton("Back to sets", true, 20)
	return s.body(width) + "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, button)
}

// body renders the session results.
func (s *SummaryScreen) body(width int) string {
	sum := s.summary

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder

	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(s.heading()))
	b.WriteString("\n")
	if s.setName != "" {
		b.WriteString(center.Foreground(theme.TextDim).Render(
			fmt.Sprintf("%s · %s", s.setName, sum.Stats.Level.Name())))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if sum.SetMastered != nil {
		b.WriteString(center.Render(theme.Badge.Render(
			fmt.Sprintf("★ Set mastered at %s!", sum.SetMastered.Level.Name()))))
		b.WriteString("\n\n")
	}

	st := sum.Stats
	statsLine := fmt.Sprintf("Questions: %d    Correct: %d    Accuracy: %d%%    Avg: %.1fs",
		st.TotalQuestions, st.CorrectAnswers, sum.AccuracyPct, sum.AverageSeconds)
	b.WriteString(center.Foreground(theme.Text).Render(statsLine))
	b.WriteString("\n")
	breakdown := fmt.Sprintf("%s  %s  %s",
		theme.Correct.Render(fmt.Sprintf("%d fast", st.FastAnswers)),
		theme.Slow.Render(fmt.Sprintf("%d slow", st.SlowAnswers)),
		theme.Incorrect.Render(fmt.Sprintf("%d wrong", st.IncorrectAnswers)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, breakdown))
	b.WriteString("\n\n")

	if sum.TotalCards > 0 {
		bar := components.NewLearnedBar(sum.LearnedCount, sum.TotalCards, st.Level, min(width-8, 56))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	if sum.AllLearned() {
		b.WriteString(center.Foreground(theme.Success).Bold(true).Render("Every card learned. Great work!"))
		return b.String()
	}
	if len(sum.CardsNeedingWork) == 0 {
		return b.String()
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("Needs work")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	for _, c := range sum.CardsNeedingWork {
		line := fmt.Sprintf("%-10s = %-4d  weight %d  %d/%d correct",
			c.Question, c.Answer, c.Weight, c.Stats.CorrectAttempts, c.Stats.TotalAttempts)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *SummaryScreen) heading() string {
	switch s.endReason {
	case "time-up":
		return "Time's up!"
	case "mastered":
		return "Set mastered!"
	}
	return "Session complete!"
}
