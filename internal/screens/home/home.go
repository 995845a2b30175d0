package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/screens/history"
	"github.com/abhisek/flashmath/internal/screens/overview"
	"github.com/abhisek/flashmath/internal/screens/settings"
	"github.com/abhisek/flashmath/internal/screens/setup"
	"github.com/abhisek/flashmath/internal/screens/users"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
)

type setRow struct {
	id      string
	name    string
	badge   string
	learned int
	total   int
}

// HomeScreen lists the sets with the current user's standing on each.
type HomeScreen struct {
	env      screen.Env
	rows     []setRow
	selected int
	mastered int
	learned  int
	cards    int
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ router.Refresher       = (*HomeScreen)(nil)
)

// New creates a new HomeScreen.
func New(env screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.load()
	return h
}

// load rebuilds the set rows from the trainer.
func (h *HomeScreen) load() {
	tr := h.env.Trainer
	h.rows = h.rows[:0]
	h.mastered, h.learned, h.cards = 0, 0, 0
	for _, set := range tr.Sets() {
		o, err := tr.Overview(h.env.Ctx, set.ID)
		if err != nil {
			continue
		}
		h.rows = append(h.rows, setRow{
			id:      set.ID,
			name:    set.Name,
			badge:   mastery.Badge(o.Mastery, o.HasMastery),
			learned: o.Learned,
			total:   len(o.Cards),
		})
		if o.HasMastery {
			h.mastered++
		}
		h.learned += o.Learned
		h.cards += len(o.Cards)
	}
	if h.selected >= len(h.rows) {
		h.selected = max(len(h.rows)-1, 0)
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Refresh reloads after returning from another screen. Back on the set list
// no set is active unless a session is still running.
func (h *HomeScreen) Refresh() tea.Cmd {
	if _, running := h.env.Trainer.Session(); !running {
		h.env.Trainer.ClearCurrentSet()
	}
	h.load()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if h.selected > 0 {
			h.selected--
		}
	case "down", "j":
		if h.selected < len(h.rows)-1 {
			h.selected++
		}
	case "enter":
		if id, ok := h.selectedID(); ok {
			return h, push(setup.New(h.env, id))
		}
	case "o":
		if id, ok := h.selectedID(); ok {
			return h, push(overview.New(h.env, id))
		}
	case "h":
		return h, push(history.New(h.env))
	case "s":
		return h, push(settings.New(h.env))
	case "u":
		return h, push(users.New(h.env))
	case "q":
		return h, tea.Quit
	}
	return h, nil
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) selectedID() (string, bool) {
	if h.selected < 0 || h.selected >= len(h.rows) {
		return "", false
	}
	return h.rows[h.selected].id, true
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw)}
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(len(h.rows), h.mastered), cw))
	}
	sections = append(sections,
		renderStatsBar(h.mastered, h.learned, h.cards, cw, compact),
		renderSetList(h.rows, h.selected, cw))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Set"},
		{Key: "Enter", Description: "Practice"},
		{Key: "O", Description: "Cards"},
		{Key: "H", Description: "History"},
		{Key: "S", Description: "Settings"},
		{Key: "U", Description: "Users"},
		{Key: "Q", Description: "Quit"},
	}
}
