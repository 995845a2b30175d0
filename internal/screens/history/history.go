package history

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/history"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

type historyLoadedMsg struct {
	Records []history.Record
}

// HistoryScreen displays the current user's past sessions.
type HistoryScreen struct {
	env      screen.Env
	records  []history.Record
	selected int
	expanded map[int]bool
	loaded   bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{Records: s.env.Trainer.History(s.env.Ctx, history.MaxRecords)}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.records = msg.Records
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.records {
		dateStr := rec.StartedAt.Local().Format("Jan 02 15:04")
		durationStr := fmt.Sprintf("%d:%02d", rec.DurationSecs/60, rec.DurationSecs%60)

		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s  %-20s  %s  %3d questions  %3.0f%%",
			prefix, dateStr, truncate(rec.SetName, 20), durationStr, rec.Questions, rec.Accuracy()*100)
		if rec.MasteredSetLevel != "" {
			line += "  ★"
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, detail := range details(rec) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(detail.color).Render(detail.text)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

type detailLine struct {
	text  string
	color color.Color
}

func details(rec history.Record) []detailLine {
	mode := "Master"
	if rec.Mode == session.ModeTimed {
		mode = "Timed"
	}
	lines := []detailLine{
		{fmt.Sprintf("    %s · %s · avg %.1fs", mode, rec.Level.Name(), rec.AverageTimeMs/1000), theme.TextDim},
		{fmt.Sprintf("    %d fast · %d slow · %d wrong", rec.Fast, rec.Slow, rec.Incorrect), theme.TextDim},
	}
	if rec.MasteredSetLevel != "" {
		lines = append(lines, detailLine{
			"    Set mastered: " + mastery.Badge(rec.MasteredSetLevel, true),
			theme.LevelColor(rec.MasteredSetLevel),
		})
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
