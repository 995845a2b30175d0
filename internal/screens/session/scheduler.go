package session

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashmath/internal/practice"
)

// teaScheduler implements practice.Scheduler on top of tea.Tick: each
// AfterFunc queues a tick command, and the callback runs when the tick
// message reaches the screen's Update.
type teaScheduler struct {
	mu      sync.Mutex
	nextID  int
	timers  map[int]*teaTimer
	pending []tea.Cmd
}

type teaTimer struct {
	s  *teaScheduler
	id int
	f  func()
}

var _ practice.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{timers: make(map[int]*teaTimer)}
}

func (s *teaScheduler) AfterFunc(d time.Duration, f func()) practice.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	t := &teaTimer{s: s, id: id, f: f}
	s.timers[id] = t
	s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	}))
	return t
}

func (t *teaTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}

// Fire runs the callback of timer id unless it was stopped.
func (s *teaScheduler) Fire(id int) {
	s.mu.Lock()
	t, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if ok {
		t.f()
	}
}

// Drain returns the tick commands queued since the last call.
func (s *teaScheduler) Drain() tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Live reports how many timers are pending.
func (s *teaScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
