// Package practice drives one interactive practice session: keypad input,
// answer feedback, the countdown of timed sessions and advancing between
// cards. Front ends feed it key presses and render its View.
package practice

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/trainer"
)

// Backend is the part of the trainer a practice session needs.
type Backend interface {
	CurrentSet() (problemset.MathSet, error)
	GetCardsWithProgress(ctx context.Context, set problemset.MathSet) []progress.MergedCard
	SelectNextCard(cards []progress.MergedCard, excludeID string) (progress.MergedCard, bool)
	SubmitAnswer(ctx context.Context, cardID string, answer, elapsedMs int) (trainer.Outcome, error)
	Session() (*session.Stats, bool)
	EndSession(ctx context.Context) (*session.Stats, error)
}

var _ Backend = (*trainer.Trainer)(nil)

// Timing holds the feedback and countdown delays.
type Timing struct {
	FeedbackCorrect   time.Duration
	FeedbackIncorrect time.Duration
	CountdownTick     time.Duration
}

// DefaultTiming is 500ms after a correct answer, 1.5s after a wrong one and
// a one second countdown tick.
func DefaultTiming() Timing {
	return Timing{
		FeedbackCorrect:   500 * time.Millisecond,
		FeedbackIncorrect: 1500 * time.Millisecond,
		CountdownTick:     time.Second,
	}
}

// Key is a keypad button.
type Key string

const (
	KeyBackspace Key = "backspace"
	KeyEnter     Key = "enter"
	KeyClear     Key = "clear"
)

// DigitKey returns the key for digit d (0-9).
func DigitKey(d int) Key { return Key(strconv.Itoa(d)) }

func (k Key) digit() (byte, bool) {
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		return k[0], true
	}
	return 0, false
}

// maxInputDigits bounds the answer buffer.
const maxInputDigits = 6

// EndReason says why a session ended.
type EndReason string

const (
	EndNone      EndReason = ""
	EndUser      EndReason = "user"
	EndTimeUp    EndReason = "time-up"
	EndMastered  EndReason = "mastered"
	EndNoCards   EndReason = "no-cards"
	EndSetFailed EndReason = "set-unavailable"
)

// View is a snapshot of the session for rendering.
type View struct {
	Card      progress.MergedCard
	HasCard   bool
	Input     string
	Feedback  engine.Feedback
	Outcome   *trainer.Outcome // last submission, nil before the first
	Mode      session.Mode
	Level     mastery.Level
	Remaining time.Duration // timed mode only
	Learned   int
	Total     int
	Stats     session.Stats
	Ended     bool
	EndReason EndReason
}

// Controller is one practice session. Its methods are safe to call from
// scheduler callbacks running on other goroutines.
type Controller struct {
	b      Backend
	sched  Scheduler
	timing Timing
	now    func() time.Time
	log    *zap.Logger
	ctx    context.Context

	mu            sync.Mutex
	listener      func(View)
	set           problemset.MathSet
	card          progress.MergedCard
	hasCard       bool
	input         string
	feedback      engine.Feedback
	outcome       *trainer.Outcome
	questionStart time.Time
	loading       bool
	completed     bool // master mode goal reached; end after feedback

	feedbackTimer Timer
	feedbackGen   uint64

	countdownTimer Timer
	countdownGen   uint64
	remaining      time.Duration

	started   bool
	ended     bool
	endReason EndReason
	final     *session.Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces RealScheduler.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

// WithTiming replaces DefaultTiming.
func WithTiming(t Timing) Option { return func(c *Controller) { c.timing = t } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = logger.OrNop(l) } }

// WithListener registers fn to receive a View after every state change.
func WithListener(fn func(View)) Option { return func(c *Controller) { c.listener = fn } }

// New creates a controller for the backend's running session. Call Start.
func New(ctx context.Context, b Backend, opts ...Option) *Controller {
	c := &Controller{
		b:      b,
		sched:  RealScheduler{},
		timing: DefaultTiming(),
		now:    time.Now,
		log:    zap.NewNop(),
		ctx:    ctx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start shows the first card and, in timed mode, starts the countdown.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true

	set, err := c.b.CurrentSet()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.set = set
	stats, ok := c.b.Session()
	if !ok {
		c.mu.Unlock()
		return trainer.ErrNoActiveSession
	}
	if stats.Mode == session.ModeTimed {
		// The session may have started before the controller did.
		c.remaining = stats.Remaining(c.now()).Round(c.timing.CountdownTick)
	}
	switch {
	case stats.Mode == session.ModeTimed && c.remaining <= 0:
		c.remaining = 0
		c.endLocked(EndTimeUp)
	default:
		if stats.Mode == session.ModeTimed {
			c.scheduleTickLocked()
		}
		c.loadNextCardLocked()
		if !c.hasCard {
			c.endLocked(EndNoCards)
		}
	}
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
	return nil
}

// Press handles one keypad button. Input is ignored while correct or slow
// feedback is showing; during incorrect feedback a key clears the feedback
// and cancels its timer before being handled.
func (c *Controller) Press(k Key) {
	c.mu.Lock()
	if c.ended || !c.started {
		c.mu.Unlock()
		return
	}
	switch c.feedback {
	case engine.FeedbackCorrect, engine.FeedbackSlow:
		c.mu.Unlock()
		return
	case engine.FeedbackIncorrect:
		c.feedback = engine.FeedbackNone
		c.cancelFeedbackLocked()
	}

	switch k {
	case KeyEnter:
		c.submitLocked()
	case KeyBackspace:
		if n := len(c.input); n > 0 {
			c.input = c.input[:n-1]
		}
	case KeyClear:
		c.input = ""
	default:
		if d, ok := k.digit(); ok && len(c.input) < maxInputDigits {
			c.input += string(d)
		}
	}
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
}

func (c *Controller) submitLocked() {
	if !c.hasCard || c.input == "" {
		return
	}
	answer, err := strconv.Atoi(c.input)
	if err != nil {
		return
	}
	elapsed := int(c.now().Sub(c.questionStart).Milliseconds())

	out, err := c.b.SubmitAnswer(c.ctx, c.card.ID, answer, elapsed)
	if err != nil {
		c.log.Warn("submit answer failed", zap.Error(err), zap.String("card", c.card.ID))
		return
	}
	c.outcome = &out
	c.feedback = engine.Classify(out.AnswerResult)
	if out.SetCompleted {
		c.completed = true
	}

	c.cancelFeedbackLocked()
	gen := c.feedbackGen
	if out.IsCorrect {
		c.feedbackTimer = c.sched.AfterFunc(c.timing.FeedbackCorrect, func() { c.afterCorrect(gen) })
		return
	}
	c.input = ""
	c.feedbackTimer = c.sched.AfterFunc(c.timing.FeedbackIncorrect, func() { c.afterIncorrect(gen) })
}

func (c *Controller) afterCorrect(gen uint64) {
	c.mu.Lock()
	if c.ended || gen != c.feedbackGen {
		c.mu.Unlock()
		return
	}
	c.feedbackTimer = nil
	c.feedback = engine.FeedbackNone
	if c.completed && c.modeLocked() == session.ModeMaster {
		c.endLocked(EndMastered)
	} else {
		c.loadNextCardLocked()
	}
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
}

func (c *Controller) afterIncorrect(gen uint64) {
	c.mu.Lock()
	if c.ended || gen != c.feedbackGen {
		c.mu.Unlock()
		return
	}
	c.feedbackTimer = nil
	c.feedback = engine.FeedbackNone
	c.questionStart = c.now()
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
}

// loadNextCardLocked draws a card other than the current one. Calls made
// while a load is in progress are dropped.
func (c *Controller) loadNextCardLocked() {
	if c.loading {
		return
	}
	c.loading = true
	defer func() { c.loading = false }()

	set, err := c.b.CurrentSet()
	if err != nil {
		c.log.Warn("active set unavailable", zap.Error(err))
		c.endLocked(EndSetFailed)
		return
	}
	c.set = set

	exclude := ""
	if c.hasCard {
		exclude = c.card.ID
	}
	cards := c.b.GetCardsWithProgress(c.ctx, set)
	next, ok := c.b.SelectNextCard(cards, exclude)
	if !ok {
		return
	}
	c.card = next
	c.hasCard = true
	c.input = ""
	c.feedback = engine.FeedbackNone
	c.questionStart = c.now()
}

func (c *Controller) scheduleTickLocked() {
	c.countdownGen++
	gen := c.countdownGen
	c.countdownTimer = c.sched.AfterFunc(c.timing.CountdownTick, func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.ended || gen != c.countdownGen {
		c.mu.Unlock()
		return
	}
	c.remaining -= c.timing.CountdownTick
	if c.remaining <= 0 {
		c.remaining = 0
		c.endLocked(EndTimeUp)
	} else {
		c.scheduleTickLocked()
	}
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
}

// End stops the session at the user's request and returns its final stats.
// Pending feedback and countdown timers are cancelled first.
func (c *Controller) End() *session.Stats {
	c.mu.Lock()
	c.endLocked(EndUser)
	final := c.final
	fn, v := c.notifyLocked()
	c.mu.Unlock()
	emit(fn, v)
	return final
}

func (c *Controller) endLocked(reason EndReason) {
	if c.ended {
		return
	}
	c.cancelFeedbackLocked()
	if c.countdownTimer != nil {
		c.countdownTimer.Stop()
		c.countdownTimer = nil
	}
	c.countdownGen++

	c.ended = true
	c.endReason = reason
	c.feedback = engine.FeedbackNone
	stats, err := c.b.EndSession(c.ctx)
	if err != nil {
		c.log.Warn("end session", zap.Error(err))
		if s, ok := c.b.Session(); ok {
			stats = s
		}
	}
	c.final = stats
	c.log.Debug("practice ended", zap.String("reason", string(reason)))
}

func (c *Controller) cancelFeedbackLocked() {
	if c.feedbackTimer != nil {
		c.feedbackTimer.Stop()
		c.feedbackTimer = nil
	}
	c.feedbackGen++
}

// Mode returns the session mode, or "" when no session is running.
func (c *Controller) Mode() session.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modeLocked()
}

func (c *Controller) modeLocked() session.Mode {
	if c.final != nil {
		return c.final.Mode
	}
	if s, ok := c.b.Session(); ok {
		return s.Mode
	}
	return ""
}

// Ended reports whether the session is over.
func (c *Controller) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Final returns the finalized stats once the session ended.
func (c *Controller) Final() (*session.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.final, c.final != nil
}

// Snapshot returns the current View.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{
		Card:      c.card,
		HasCard:   c.hasCard,
		Input:     c.input,
		Feedback:  c.feedback,
		Outcome:   c.outcome,
		Remaining: c.remaining,
		Ended:     c.ended,
		EndReason: c.endReason,
	}
	stats := c.final
	if stats == nil {
		stats, _ = c.b.Session()
	}
	if stats != nil {
		v.Stats = *stats
		v.Mode = stats.Mode
		v.Level = stats.Level
	}
	if c.set.ID != "" {
		cards := c.b.GetCardsWithProgress(c.ctx, c.set)
		v.Learned = engine.LearnedCount(cards)
		v.Total = len(cards)
	}
	return v
}

func (c *Controller) notifyLocked() (func(View), View) {
	if c.listener == nil {
		return nil, View{}
	}
	return c.listener, c.viewLocked()
}

func emit(fn func(View), v View) {
	if fn != nil {
		fn(v)
	}
}
