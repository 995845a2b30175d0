package practice

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/store/storetest"
	"github.com/abhisek/flashmath/internal/trainer"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// manualScheduler records timers; tests fire them explicitly.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// pending returns the live timers with delay d.
func (s *manualScheduler) pending(d time.Duration) []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if t.d == d && !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireNext runs the single live timer with delay d.
func (s *manualScheduler) fireNext(t *testing.T, d time.Duration) {
	t.Helper()
	p := s.pending(d)
	require.Len(t, p, 1, "live timers of %s", d)
	p[0].fired = true
	p[0].f()
}

type fixture struct {
	tr    *trainer.Trainer
	sched *manualScheduler
	now   time.Time
	set   problemset.MathSet
}

func (f *fixture) clock() time.Time { return f.now }

func setup(t *testing.T, mode session.Mode, problems ...string) (*fixture, *Controller) {
	t.Helper()
	ctx := context.Background()
	f := &fixture{sched: &manualScheduler{}, now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f.tr = trainer.New(trainer.Deps{
		KV:   storetest.Open(t),
		Rand: rand.New(rand.NewPCG(7, 7)),
		Now:  f.clock,
	})
	f.tr.Init(ctx)

	if len(problems) == 0 {
		problems = []string{"2x3", "2x4", "2x5"}
	}
	ps, err := problemset.ParseProblems(problems)
	require.NoError(t, err)
	f.set, err = f.tr.CreateSet(ctx, "Twos", ps)
	require.NoError(t, err)
	require.NoError(t, f.tr.SetCurrentSet(f.set.ID))
	_, err = f.tr.StartSession(ctx, mode, mastery.Level1, 30*time.Second)
	require.NoError(t, err)

	c := New(ctx, f.tr, WithScheduler(f.sched), WithClock(f.clock))
	require.NoError(t, c.Start())
	return f, c
}

func typeNumber(c *Controller, n int) {
	for _, r := range strconv.Itoa(n) {
		c.Press(Key(string(r)))
	}
}

func TestStart_ShowsCard(t *testing.T) {
	_, c := setup(t, session.ModeMaster)
	v := c.Snapshot()
	assert.True(t, v.HasCard)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, session.ModeMaster, v.Mode)
	assert.Equal(t, engine.FeedbackNone, v.Feedback)
	assert.False(t, v.Ended)
}

func TestPress_EditsInput(t *testing.T) {
	_, c := setup(t, session.ModeMaster)
	c.Press(DigitKey(1))
	c.Press(DigitKey(2))
	c.Press(Key("x"))
	assert.Equal(t, "12", c.Snapshot().Input)

	c.Press(KeyBackspace)
	assert.Equal(t, "1", c.Snapshot().Input)
	c.Press(KeyClear)
	assert.Equal(t, "", c.Snapshot().Input)
	c.Press(KeyBackspace)
	assert.Equal(t, "", c.Snapshot().Input)

	for range maxInputDigits + 2 {
		c.Press(DigitKey(9))
	}
	assert.Len(t, c.Snapshot().Input, maxInputDigits)
}

func TestSubmit_EmptyInputIgnored(t *testing.T) {
	f, c := setup(t, session.ModeMaster)
	c.Press(KeyEnter)
	assert.Empty(t, f.sched.pending(DefaultTiming().FeedbackCorrect))
	assert.Empty(t, f.sched.pending(DefaultTiming().FeedbackIncorrect))
	stats, _ := f.tr.Session()
	assert.Zero(t, stats.TotalQuestions)
}

func TestSubmit_CorrectBlocksInputThenAdvances(t *testing.T) {
	f, c := setup(t, session.ModeMaster)
	first := c.Snapshot().Card

	f.now = f.now.Add(500 * time.Millisecond)
	typeNumber(c, first.Answer)
	c.Press(KeyEnter)

	v := c.Snapshot()
	assert.Equal(t, engine.FeedbackCorrect, v.Feedback)
	require.NotNil(t, v.Outcome)
	assert.True(t, v.Outcome.IsFast)

	c.Press(DigitKey(4))
	assert.Equal(t, strconv.Itoa(first.Answer), c.Snapshot().Input, "input blocked during feedback")

	f.sched.fireNext(t, DefaultTiming().FeedbackCorrect)
	v = c.Snapshot()
	assert.Equal(t, engine.FeedbackNone, v.Feedback)
	assert.Equal(t, "", v.Input)
	assert.NotEqual(t, first.ID, v.Card.ID, "next card differs from the last")

	stats, _ := f.tr.Session()
	assert.Equal(t, 1, stats.FastAnswers)
}

func TestSubmit_SlowFeedback(t *testing.T) {
	f, c := setup(t, session.ModeMaster)
	card := c.Snapshot().Card
	f.now = f.now.Add(5 * time.Second)
	typeNumber(c, card.Answer)
	c.Press(KeyEnter)
	assert.Equal(t, engine.FeedbackSlow, c.Snapshot().Feedback)
}

func TestSubmit_IncorrectKeepsCard(t *testing.T) {
	f, c := setup(t, session.ModeMaster)
	card := c.Snapshot().Card

	typeNumber(c, card.Answer+1)
	c.Press(KeyEnter)
	v := c.Snapshot()
	assert.Equal(t, engine.FeedbackIncorrect, v.Feedback)
	assert.Equal(t, "", v.Input, "wrong answer clears input")

	f.now = f.now.Add(2 * time.Second)
	f.sched.fireNext(t, DefaultTiming().FeedbackIncorrect)
	v = c.Snapshot()
	assert.Equal(t, engine.FeedbackNone, v.Feedback)
	assert.Equal(t, card.ID, v.Card.ID, "no advance after a wrong answer")

	// The question timer restarted when the feedback cleared.
	f.now = f.now.Add(time.Second)
	typeNumber(c, card.Answer)
	c.Press(KeyEnter)
	require.NotNil(t, c.Snapshot().Outcome)
	assert.True(t, c.Snapshot().Outcome.IsFast)
}

func TestKeyDuringIncorrectFeedbackCancelsTimer(t *testing.T) {
	f, c := setup(t, session.ModeMaster)
	card := c.Snapshot().Card

	typeNumber(c, card.Answer+1)
	c.Press(KeyEnter)
	pending := f.sched.pending(DefaultTiming().FeedbackIncorrect)
	require.Len(t, pending, 1)

	c.Press(DigitKey(7))
	v := c.Snapshot()
	assert.Equal(t, engine.FeedbackNone, v.Feedback)
	assert.Equal(t, "7", v.Input, "the key is processed after clearing feedback")
	assert.True(t, pending[0].stopped)

	// A late callback from the cancelled timer changes nothing.
	f.now = f.now.Add(10 * time.Second)
	pending[0].f()
	assert.Equal(t, "7", c.Snapshot().Input)

	// The question clock was not restarted by the stale callback.
	c.Press(KeyClear)
	typeNumber(c, card.Answer)
	c.Press(KeyEnter)
	assert.Equal(t, engine.FeedbackSlow, c.Snapshot().Feedback)
}

func TestTimedSession_CountdownStartsFromSessionStart(t *testing.T) {
	f, _ := setup(t, session.ModeTimed)

	f.now = f.now.Add(12 * time.Second)
	late := New(context.Background(), f.tr, WithScheduler(f.sched), WithClock(f.clock))
	require.NoError(t, late.Start())
	assert.Equal(t, 18*time.Second, late.Snapshot().Remaining)
	assert.False(t, late.Snapshot().Ended)

	f.now = f.now.Add(time.Minute)
	over := New(context.Background(), f.tr, WithScheduler(f.sched), WithClock(f.clock))
	require.NoError(t, over.Start())
	v := over.Snapshot()
	assert.True(t, v.Ended)
	assert.Equal(t, EndTimeUp, v.EndReason)
	assert.Zero(t, v.Remaining)
}

func TestTimedSession_EndsWhenCountdownRunsOut(t *testing.T) {
	f, c := setup(t, session.ModeTimed)
	tick := DefaultTiming().CountdownTick
	assert.Equal(t, 30*time.Second, c.Snapshot().Remaining)

	for i := 0; i < 29; i++ {
		f.sched.fireNext(t, tick)
	}
	v := c.Snapshot()
	assert.Equal(t, time.Second, v.Remaining)
	assert.False(t, v.Ended)

	f.sched.fireNext(t, tick)
	v = c.Snapshot()
	assert.True(t, v.Ended)
	assert.Equal(t, EndTimeUp, v.EndReason)
	assert.Zero(t, v.Remaining)
	assert.Empty(t, f.sched.pending(tick))

	_, running := f.tr.Session()
	assert.False(t, running)
	final, ok := c.Final()
	require.True(t, ok)
	assert.NotNil(t, final.EndTime)
}

func TestEnd_CancelsPendingTimers(t *testing.T) {
	f, c := setup(t, session.ModeTimed)
	card := c.Snapshot().Card
	typeNumber(c, card.Answer)
	c.Press(KeyEnter)

	fb := f.sched.pending(DefaultTiming().FeedbackCorrect)
	cd := f.sched.pending(DefaultTiming().CountdownTick)
	require.Len(t, fb, 1)
	require.Len(t, cd, 1)

	final := c.End()
	require.NotNil(t, final)
	assert.Equal(t, 1, final.TotalQuestions)
	assert.True(t, fb[0].stopped)
	assert.True(t, cd[0].stopped)

	fb[0].f()
	cd[0].f()
	v := c.Snapshot()
	assert.Equal(t, card.ID, v.Card.ID, "stale feedback callback must not advance")
	assert.Equal(t, EndUser, v.EndReason)

	c.Press(DigitKey(1))
	assert.NotEqual(t, "1", c.Snapshot().Input, "input ignored after end")
	assert.Same(t, final, c.End(), "End is idempotent")
}

func TestMasterMode_EndsOnceSetMastered(t *testing.T) {
	f, c := setup(t, session.ModeMaster, "2x3", "2x4")
	for i := 0; i < 2; i++ {
		v := c.Snapshot()
		require.False(t, v.Ended)
		typeNumber(c, v.Card.Answer)
		c.Press(KeyEnter)
		f.sched.fireNext(t, DefaultTiming().FeedbackCorrect)
	}

	v := c.Snapshot()
	assert.True(t, v.Ended)
	assert.Equal(t, EndMastered, v.EndReason)
	lvl, ok := f.tr.SetMastery(context.Background(), f.set.ID)
	require.True(t, ok)
	assert.Equal(t, mastery.Level1, lvl)
}

func TestListenerReceivesViews(t *testing.T) {
	f, _ := setup(t, session.ModeMaster)
	var views []View
	c := New(context.Background(), f.tr,
		WithScheduler(f.sched),
		WithClock(f.clock),
		WithListener(func(v View) { views = append(views, v) }))
	require.NoError(t, c.Start())
	c.Press(DigitKey(3))

	require.Len(t, views, 2)
	assert.True(t, views[0].HasCard)
	assert.Equal(t, "3", views[1].Input)
}

func TestStart_WithoutSession(t *testing.T) {
	f, _ := setup(t, session.ModeMaster)
	_, err := f.tr.EndSession(context.Background())
	require.NoError(t, err)

	c := New(context.Background(), f.tr, WithScheduler(f.sched))
	assert.ErrorIs(t, c.Start(), trainer.ErrNoActiveSession)
}

func TestLoadNextCard_ReentrantCallDropped(t *testing.T) {
	_, c := setup(t, session.ModeMaster)
	before := c.Snapshot().Card

	c.mu.Lock()
	c.loading = true
	c.loadNextCardLocked()
	c.loading = false
	c.mu.Unlock()

	assert.Equal(t, before.ID, c.Snapshot().Card.ID)
}
