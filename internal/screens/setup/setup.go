// Package setup is the pre-session screen: level, mode and duration.
package setup

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	sessionscreen "github.com/abhisek/flashmath/internal/screens/session"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/trainer"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

const (
	fieldLevel = iota
	fieldMode
	fieldDuration
)

var modes = []session.Mode{session.ModeMaster, session.ModeTimed}

// SetupScreen picks the level, mode and duration for a set.
type SetupScreen struct {
	env      screen.Env
	setID    string
	overview trainer.Overview
	missing  bool

	level    components.MultiChoice
	mode     components.MultiChoice
	duration components.MultiChoice
	focus    int
	errMsg   string
}

var (
	_ screen.Screen          = (*SetupScreen)(nil)
	_ screen.KeyHintProvider = (*SetupScreen)(nil)
)

// New creates the setup screen for setID.
func New(env screen.Env, setID string) *SetupScreen {
	s := &SetupScreen{env: env, setID: setID}
	o, err := env.Trainer.Overview(env.Ctx, setID)
	if err != nil {
		s.missing = true
		return s
	}
	s.overview = o

	unlocked := make(map[mastery.Level]bool, len(o.UnlockedLevels))
	for _, l := range o.UnlockedLevels {
		unlocked[l] = true
	}
	levels := make([]components.Choice, len(mastery.Levels))
	start := 0
	for i, l := range mastery.Levels {
		levels[i] = components.Choice{Label: mastery.LevelLabel(l, unlocked[l]), Disabled: !unlocked[l]}
		if unlocked[l] {
			start = i
		}
	}
	s.level = components.NewMultiChoice("Level", levels, start)

	s.mode = components.NewMultiChoice("Mode", []components.Choice{{Label: "Master"}, {Label: "Timed"}}, 0)

	durations := make([]components.Choice, len(session.TimedDurations))
	def := 0
	for i, d := range session.TimedDurations {
		durations[i] = components.Choice{Label: d.String()}
		if d == session.DefaultTimedDuration {
			def = i
		}
	}
	s.duration = components.NewMultiChoice("Duration", durations, def)
	s.setFocus(fieldLevel)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	if s.missing {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return nil
}

func (s *SetupScreen) Title() string {
	return "New Session"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) fields() int {
	if s.selectedMode() == session.ModeTimed {
		return 3
	}
	return 2
}

func (s *SetupScreen) setFocus(f int) {
	s.focus = f
	s.level.Focused = f == fieldLevel
	s.mode.Focused = f == fieldMode
	s.duration.Focused = f == fieldDuration
}

func (s *SetupScreen) selectedMode() session.Mode {
	return modes[s.mode.Selected]
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.missing {
		return s, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k", "shift+tab":
		s.setFocus((s.focus + s.fields() - 1) % s.fields())
		return s, nil
	case "down", "j", "tab":
		s.setFocus((s.focus + 1) % s.fields())
		return s, nil
	case "enter":
		return s, s.start()
	}

	s.level, _ = s.level.Update(msg)
	s.mode, _ = s.mode.Update(msg)
	s.duration, _ = s.duration.Update(msg)
	if s.focus >= s.fields() {
		s.setFocus(fieldMode)
	}
	return s, nil
}

// start makes the set current, starts the session and replaces this screen
// with the practice screen.
func (s *SetupScreen) start() tea.Cmd {
	if !s.level.Valid() {
		s.errMsg = "no level unlocked"
		return nil
	}
	tr := s.env.Trainer
	level := mastery.Levels[s.level.Selected]
	var d time.Duration
	if s.selectedMode() == session.ModeTimed {
		d = session.TimedDurations[s.duration.Selected]
	}

	if err := tr.SetCurrentSet(s.setID); err != nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if _, err := tr.StartSession(s.env.Ctx, s.selectedMode(), level, d); err != nil {
		s.env.Log.Warn("start session", zap.Error(err))
		s.errMsg = err.Error()
		return nil
	}
	next := sessionscreen.New(s.env.Ctx, tr, s.env.Timing, s.env.Log)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SetupScreen) View(width, height int) string {
	if s.missing {
		return ""
	}
	o := s.overview
	cw := max(min(width-4, 96), 20)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 8).Render(o.Set.Name))
	b.WriteString("\n")
	status := fmt.Sprintf("%d cards · %d learned", len(o.Cards), o.Learned)
	if badge := mastery.Badge(o.Mastery, o.HasMastery); badge != "" {
		status += " · " + badge
	}
	b.WriteString(theme.Subtitle.Width(cw - 8).Render(status))
	b.WriteString("\n\n")

	b.WriteString(s.level.View())
	b.WriteString("\n\n")
	b.WriteString(s.mode.View())
	b.WriteString("\n\n")
	if s.selectedMode() == session.ModeTimed {
		b.WriteString(s.duration.View())
	} else {
		b.WriteString(theme.Hint.Render("Practice until every card is fast at this level."))
	}
	b.WriteString("\n\n")

	threshold := s.env.Trainer.Settings(s.env.Ctx).SpeedThresholdMs
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Answers under %.1fs count as fast.", float64(threshold)/1000)))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}

	card := components.ArcadeCard(lipgloss.NewStyle().Align(lipgloss.Left).Render(b.String()), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
