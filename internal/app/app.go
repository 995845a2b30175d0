// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/screens/home"
	sessionscreen "github.com/abhisek/flashmath/internal/screens/session"
	"github.com/abhisek/flashmath/internal/screens/welcome"
	"github.com/abhisek/flashmath/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Env screen.Env

	// SkipWelcome opens the home screen directly.
	SkipWelcome bool

	// Practice opens the practice screen on top of home for the session
	// already started on the trainer.
	Practice bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env      screen.Env
	router   *router.Router
	practice bool
	width    int
	height   int
}

// newAppModel creates the root model with the welcome or home screen at the
// bottom of the stack.
func newAppModel(opts Options) AppModel {
	env := opts.Env
	if env.Ctx == nil {
		env.Ctx = context.Background()
	}
	env.Log = logger.OrNop(env.Log)
	homeFactory := func() screen.Screen { return home.New(env) }

	var root screen.Screen
	if opts.SkipWelcome || opts.Practice {
		root = homeFactory()
	} else {
		root = welcome.New(homeFactory)
	}
	return AppModel{
		env:      env,
		router:   router.New(root),
		practice: opts.Practice,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.practice {
		next := sessionscreen.New(m.env.Ctx, m.env.Trainer, m.env.Timing, m.env.Log)
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: next} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, the active screen and the footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.env.Trainer.CurrentUser(), m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits. A session
// still running when the program quits is ended.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m, tea.WithContext(m.env.Ctx))
	_, err := p.Run()

	if _, running := m.env.Trainer.Session(); running {
		if _, endErr := m.env.Trainer.EndSession(context.WithoutCancel(m.env.Ctx)); endErr != nil {
			m.env.Log.Warn("end session on exit", zap.Error(endErr))
		}
	}
	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
