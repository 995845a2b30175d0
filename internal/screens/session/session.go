// Package session is the practice screen: one question at a time, typed or
// keypad answers, feedback and the countdown of timed sessions.
package session

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/practice"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/screens/summary"
	"github.com/abhisek/flashmath/internal/trainer"
	"github.com/abhisek/flashmath/internal/ui/layout"
)

// SessionScreen implements screen.Screen for a running practice session.
// The session must already be started on the trainer.
type SessionScreen struct {
	ctx    context.Context
	tr     *trainer.Trainer
	ctrl   *practice.Controller
	sched  *teaScheduler
	log    *zap.Logger
	errMsg string
	ending bool
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.EscapeHandler   = (*SessionScreen)(nil)
)

// New creates the practice screen for the trainer's running session.
func New(ctx context.Context, tr *trainer.Trainer, timing practice.Timing, log *zap.Logger) *SessionScreen {
	sched := newTeaScheduler()
	log = log.Named("practice")
	return &SessionScreen{
		ctx:   ctx,
		tr:    tr,
		sched: sched,
		log:   log,
		ctrl: practice.New(ctx, tr,
			practice.WithScheduler(sched),
			practice.WithTiming(timing),
			practice.WithLogger(log)),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if err := s.ctrl.Start(); err != nil {
		s.log.Warn("start practice", zap.Error(err))
		s.errMsg = err.Error()
		return nil
	}
	return s.after(nil)
}

func (s *SessionScreen) Title() string {
	return "Practice"
}

func (s *SessionScreen) HandlesEscape() bool { return true }

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "0-9", Description: "Answer"},
		{Key: "Enter", Description: "Submit"},
		{Key: "⌫", Description: "Erase"},
		{Key: "Esc", Description: "End session"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerFiredMsg:
		s.sched.Fire(msg.id)
		return s, s.after(nil)

	case sessionEndMsg:
		return s, s.handleSessionEnd()

	case tea.KeyPressMsg:
		return s, s.after(s.handleKey(msg))
	}
	return s, nil
}

// after collects the timer ticks queued by the controller and, once the
// controller has ended, schedules the move to the summary.
func (s *SessionScreen) after(cmd tea.Cmd) tea.Cmd {
	cmds := []tea.Cmd{cmd, s.sched.Drain()}
	if s.ctrl.Ended() && !s.ending {
		s.ending = true
		cmds = append(cmds, func() tea.Msg { return sessionEndMsg{} })
	}
	return tea.Batch(cmds...)
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.errMsg != "" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch key := msg.String(); key {
	case "esc":
		s.ctrl.End()
	case "enter":
		s.ctrl.Press(practice.KeyEnter)
	case "backspace":
		s.ctrl.Press(practice.KeyBackspace)
	case "delete", "ctrl+u":
		s.ctrl.Press(practice.KeyClear)
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			s.ctrl.Press(practice.Key(key))
		}
	}
	return nil
}

func (s *SessionScreen) handleSessionEnd() tea.Cmd {
	sum, err := s.tr.Summary(s.ctx)
	if err != nil {
		s.log.Warn("build summary", zap.Error(err))
		return func() tea.Msg { return router.PopToRootMsg{} }
	}
	v := s.ctrl.Snapshot()
	next := summary.New(sum, s.setName(), string(v.EndReason))
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SessionScreen) setName() string {
	if set, err := s.tr.CurrentSet(); err == nil {
		return set.Name
	}
	return ""
}
