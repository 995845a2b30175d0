// Package settings is the screen for the current user's practice preferences.
package settings

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/screen"
	prefs "github.com/abhisek/flashmath/internal/settings"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
)

// thresholdStep is how far one arrow press moves the speed threshold.
const thresholdStep = 500

// SettingsScreen edits the fast-answer threshold.
type SettingsScreen struct {
	env       screen.Env
	threshold int
	saved     int
	status    string
}

var (
	_ screen.Screen          = (*SettingsScreen)(nil)
	_ screen.KeyHintProvider = (*SettingsScreen)(nil)
)

// New creates the settings screen loaded with the current user's settings.
func New(env screen.Env) *SettingsScreen {
	cur := env.Trainer.Settings(env.Ctx).SpeedThresholdMs
	return &SettingsScreen{env: env, threshold: cur, saved: cur}
}

func (s *SettingsScreen) Init() tea.Cmd { return nil }

func (s *SettingsScreen) Title() string { return "Settings" }

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Adjust"},
		{Key: "D", Description: "Default"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "h", "-":
		s.adjust(-thresholdStep)
	case "right", "l", "+", "=":
		s.adjust(thresholdStep)
	case "d":
		s.threshold = prefs.DefaultSpeedThresholdMs
		s.status = ""
	case "enter":
		saved := s.env.Trainer.SaveSettings(s.env.Ctx, prefs.Settings{SpeedThresholdMs: s.threshold})
		s.threshold = saved.SpeedThresholdMs
		s.saved = saved.SpeedThresholdMs
		s.status = "Saved"
	}
	return s, nil
}

func (s *SettingsScreen) adjust(delta int) {
	s.threshold = prefs.ClampThreshold(float64(s.threshold + delta))
	s.status = ""
}

func seconds(ms int) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// slider draws the threshold position between the allowed bounds.
func slider(ms, width int) string {
	span := prefs.MaxSpeedThresholdMs - prefs.MinSpeedThresholdMs
	pos := (ms - prefs.MinSpeedThresholdMs) * (width - 1) / span
	return theme.ProgressFilled.Render(strings.Repeat("─", pos)) +
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("●") +
		theme.ProgressEmpty.Render(strings.Repeat("─", width-1-pos))
}

func (s *SettingsScreen) View(width, height int) string {
	cw := max(min(width-4, 72), 30)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Profile: " + s.env.Trainer.CurrentUser()))
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Render("Fast answer threshold"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("◂ " + seconds(s.threshold) + " ▸"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(seconds(prefs.MinSpeedThresholdMs) + " "))
	b.WriteString(slider(s.threshold, max(cw-20, 10)))
	b.WriteString(theme.Hint.Render(" " + seconds(prefs.MaxSpeedThresholdMs)))
	b.WriteString("\n\n")

	b.WriteString(theme.Hint.Render("Correct answers under the threshold lower a card's weight."))
	b.WriteString("\n")
	var limits []string
	for _, l := range mastery.Levels {
		limits = append(limits, fmt.Sprintf("%s %s", l.Name(), seconds(int(l.SpeedThreshold().Milliseconds()))))
	}
	b.WriteString(theme.Hint.Render("Level limits: " + strings.Join(limits, " · ")))

	switch {
	case s.status != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Correct.Render(s.status))
	case s.threshold != s.saved:
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("Unsaved changes"))
	}

	card := components.ArcadeCard(b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
