// Package overview shows every card of a set with the current user's
// progress, grouped into cards still being learned and learned ones.
package overview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/screens/setup"
	"github.com/abhisek/flashmath/internal/trainer"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

type rowKind int

const (
	rowSectionHeader rowKind = iota
	rowCard
)

type row struct {
	kind    rowKind
	section string
	card    *progress.MergedCard
}

// OverviewScreen lists a set's cards with weight, accuracy and mastered levels.
type OverviewScreen struct {
	env          screen.Env
	setID        string
	overview     trainer.Overview
	missing      bool
	rows         []row
	cursor       int
	scrollOffset int
	confirmReset bool
}

var (
	_ screen.Screen          = (*OverviewScreen)(nil)
	_ screen.KeyHintProvider = (*OverviewScreen)(nil)
	_ router.Refresher       = (*OverviewScreen)(nil)
)

// New creates the overview of setID.
func New(env screen.Env, setID string) *OverviewScreen {
	s := &OverviewScreen{env: env, setID: setID}
	s.load()
	return s
}

func (s *OverviewScreen) load() {
	o, err := s.env.Trainer.Overview(s.env.Ctx, s.setID)
	if err != nil {
		s.missing = true
		return
	}
	s.overview = o

	var learning, learned []*progress.MergedCard
	for i := range o.Cards {
		c := &o.Cards[i]
		if engine.Learned(*c) {
			learned = append(learned, c)
		} else {
			learning = append(learning, c)
		}
	}

	s.rows = s.rows[:0]
	for _, sec := range []struct {
		name  string
		cards []*progress.MergedCard
	}{{"Learning", learning}, {"Learned", learned}} {
		if len(sec.cards) == 0 {
			continue
		}
		s.rows = append(s.rows, row{kind: rowSectionHeader, section: sec.name})
		for _, c := range sec.cards {
			s.rows = append(s.rows, row{kind: rowCard, section: sec.name, card: c})
		}
	}

	s.cursor = 0
	s.moveCursor(1)
}

func (s *OverviewScreen) Init() tea.Cmd {
	if s.missing {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return nil
}

// Refresh reloads progress when the screen becomes active again.
func (s *OverviewScreen) Refresh() tea.Cmd {
	s.load()
	return s.Init()
}

func (s *OverviewScreen) Title() string {
	return "Cards"
}

// KeyHints returns the key binding hints for the footer.
func (s *OverviewScreen) KeyHints() []layout.KeyHint {
	if s.confirmReset {
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset progress"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Section"},
		{Key: "Enter", Description: "Practice"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *OverviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || s.missing {
		return s, nil
	}

	if s.confirmReset {
		switch kmsg.String() {
		case "y", "Y":
			s.confirmReset = false
			if err := s.env.Trainer.ResetSetProgress(s.env.Ctx, s.setID); err != nil {
				s.env.Log.Warn("reset set progress", zap.Error(err))
			}
			s.load()
		case "n", "N":
			s.confirmReset = false
		}
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "tab":
		s.nextSection()
	case "enter":
		next := setup.New(s.env, s.setID)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case "r":
		s.confirmReset = true
	}
	return s, nil
}

// moveCursor moves the cursor by delta, skipping section headers.
func (s *OverviewScreen) moveCursor(delta int) {
	next := s.cursor + delta
	if s.cursor < len(s.rows) && s.rows[s.cursor].kind == rowSectionHeader && delta > 0 {
		next = s.cursor
	}
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowCard {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextSection jumps to the first card of the next section, wrapping around.
func (s *OverviewScreen) nextSection() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].section
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowCard && s.rows[i].section != current {
			s.cursor = i
			return
		}
	}
	s.cursor = 0
	s.moveCursor(1)
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *OverviewScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowSectionHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *OverviewScreen) View(width, height int) string {
	if s.missing {
		return ""
	}
	head := s.renderHeader(width)
	body := height - lipgloss.Height(head) - 1
	s.adjustScroll(body)

	lines := []string{head}
	visible := 0
	for i := s.scrollOffset; i < len(s.rows) && visible < body; i++ {
		r := s.rows[i]
		line := renderSectionHeader(r.section, width)
		if r.kind == rowCard {
			line = renderCardRow(*r.card, i == s.cursor, width)
		}
		lines = append(lines, line)
		visible += lipgloss.Height(line)
	}
	return strings.Join(lines, "\n")
}

func (s *OverviewScreen) renderHeader(width int) string {
	o := s.overview
	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + o.Set.Name)

	state := "not mastered yet"
	if badge := mastery.Badge(o.Mastery, o.HasMastery); badge != "" {
		state = badge
	}
	if o.State.Terminal() {
		state += " · every level mastered"
	}
	info := fmt.Sprintf("%d/%d learned · %d attempts · %.0f%% accuracy · %s",
		o.Learned, len(o.Cards), o.Attempts, o.Accuracy*100, state)

	out := title + "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).Padding(0, 2).Render(info)
	if s.confirmReset {
		out += "\n" + theme.Incorrect.Padding(0, 2).Render(
			"Reset all progress and mastery for this set? (y/n)")
	}
	return out
}

// renderSectionHeader renders a section header row.
func renderSectionHeader(name string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(name))
}

// weightBar draws the card weight as filled blocks out of the maximum.
func weightBar(w int) string {
	w = progress.ClampWeight(w)
	return strings.Repeat("■", w) + strings.Repeat("□", progress.MaxWeight-w)
}

// renderCardRow renders a single card row.
func renderCardRow(c progress.MergedCard, selected bool, width int) string {
	icon := "·"
	if engine.Learned(c) {
		icon = "✓"
	}

	acc := "  -"
	if c.Stats.TotalAttempts > 0 {
		acc = fmt.Sprintf("%3.0f%%", 100*float64(c.Stats.CorrectAttempts)/float64(c.Stats.TotalAttempts))
	}

	levels := make([]string, 0, len(c.MasteredAtLevels))
	for _, l := range c.MasteredAtLevels {
		levels = append(levels, l.Name())
	}

	style := lipgloss.NewStyle().Foreground(theme.Text)
	cursor := "  "
	if selected {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		cursor = "▸ "
	}

	line := fmt.Sprintf("  %s%s %-10s = %-4d  %s  %3d tries %s  %s",
		cursor, icon, c.Question, c.Answer, weightBar(c.Weight),
		c.Stats.TotalAttempts, acc, strings.Join(levels, ", "))
	if lipgloss.Width(line) > width && width > 1 {
		line = string([]rune(line)[:width-1]) + "…"
	}
	return style.Render(line)
}
