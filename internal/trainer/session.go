package trainer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/history"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/session"
)

// Outcome is the result of one submitted answer.
type Outcome struct {
	engine.AnswerResult

	// CardMastered is set when this answer mastered the card at the session level.
	CardMastered bool

	// SetTransition is the set mastery change this answer caused, if any.
	SetTransition *mastery.StateTransition

	// SetCompleted is set in master mode once every card is mastered at the
	// session level and the set was not already mastered there when the
	// session started.
	SetCompleted bool
}

// StartSession begins a session on the current set. The level must be
// unlocked for the set; duration applies to timed mode only.
func (t *Trainer) StartSession(ctx context.Context, mode session.Mode, level mastery.Level, duration time.Duration) (*session.Stats, error) {
	set, err := t.CurrentSet()
	if err != nil {
		return nil, err
	}
	if !level.Valid() {
		return nil, fmt.Errorf("unknown level %q", level)
	}
	ctrl := t.controller()
	if !ctrl.IsLevelUnlocked(ctx, set.ID, level) {
		return nil, fmt.Errorf("%w: %s for %s", ErrLevelLocked, level.Name(), set.Name)
	}
	already := ctrl.IsSetMasteredAtLevel(ctx, set.CardIDs(), level)

	stats := session.New(set.ID, mode, level, duration, t.now())

	t.mu.Lock()
	t.session = stats
	t.sessionSetID = set.ID
	t.wasMastered = already
	t.transition = nil
	t.last = nil
	t.mu.Unlock()

	t.log.Debug("session started",
		zap.String("session", stats.ID),
		zap.String("user", ctrl.User()),
		zap.String("set", set.ID),
		zap.String("mode", string(mode)),
		zap.String("level", string(level)))
	return copyStats(stats), nil
}

// Session returns a snapshot of the running session.
func (t *Trainer) Session() (*session.Stats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, false
	}
	return copyStats(t.session), true
}

// EndSession finalizes the running session and returns its statistics.
func (t *Trainer) EndSession(ctx context.Context) (*session.Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, ErrNoActiveSession
	}
	t.session.Finish(t.now())
	t.last = t.session
	t.session = nil

	t.log.Debug("session ended",
		zap.String("session", t.last.ID),
		zap.Int("questions", t.last.TotalQuestions),
		zap.Int("correct", t.last.CorrectAnswers))

	if t.last.TotalQuestions > 0 {
		name := t.last.SetID
		if set, err := t.sets.Get(t.last.SetID); err == nil {
			name = set.Name
		}
		rec := history.FromStats(t.last, name, t.transition)
		t.history.Append(ctx, t.currentUserLocked(), rec)
	}
	return copyStats(t.last), nil
}

// History returns up to limit of the current user's finished sessions,
// newest first.
func (t *Trainer) History(ctx context.Context, limit int) []history.Record {
	return t.history.List(ctx, t.CurrentUser(), limit)
}

// SubmitAnswer evaluates an answer to a card of the active set against the
// user's speed threshold, stores the card's new progress and updates the
// running session and mastery.
func (t *Trainer) SubmitAnswer(ctx context.Context, cardID string, answer, elapsedMs int) (Outcome, error) {
	set, err := t.CurrentSet()
	if err != nil {
		return Outcome{}, err
	}
	card, ok := set.Card(cardID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	user := t.CurrentUser()
	threshold := t.settings.Load(ctx, user).SpeedThresholdMs
	merged := t.progress.MergeCardWithProgress(ctx, user, card)
	ev := engine.EvaluateAnswer(merged, answer, elapsedMs, threshold)

	p := ev.Progress
	t.progress.UpdateCardProgress(ctx, user, card.ID, progress.Update{
		Weight:             &p.Weight,
		ConsecutiveCorrect: &p.ConsecutiveCorrect,
		LastDurationMs:     p.LastDurationMs,
		Stats: &progress.StatsUpdate{
			TotalAttempts:     &p.Stats.TotalAttempts,
			CorrectAttempts:   &p.Stats.CorrectAttempts,
			FastAttempts:      &p.Stats.FastAttempts,
			SlowAttempts:      &p.Stats.SlowAttempts,
			IncorrectAttempts: &p.Stats.IncorrectAttempts,
		},
	})

	out := Outcome{AnswerResult: ev.AnswerResult}

	t.mu.Lock()
	sess := t.session
	if sess != nil && t.sessionSetID == set.ID {
		sess.Record(ev.AnswerResult, elapsedMs)
	} else {
		sess = nil
	}
	wasMastered := t.wasMastered
	t.mu.Unlock()
	if sess == nil {
		return out, nil
	}

	ctrl := mastery.NewController(t.progress, user, t.log.Named("mastery"))
	if ev.IsFast {
		out.CardMastered = ctrl.RecordCardLevelMastery(ctx, card.ID, sess.Level)
	}
	if ctrl.IsSetMasteredAtLevel(ctx, set.CardIDs(), sess.Level) {
		out.SetTransition = ctrl.RecordSetMastery(ctx, set.ID, sess.Level)
		out.SetCompleted = sess.Mode == session.ModeMaster && !wasMastered
	}
	if out.SetTransition != nil {
		t.mu.Lock()
		t.transition = out.SetTransition
		t.mu.Unlock()
	}
	return out, nil
}

// Summary describes the most recently ended session.
func (t *Trainer) Summary(ctx context.Context) (*session.Summary, error) {
	t.mu.Lock()
	last, tr, setID := t.last, t.transition, t.sessionSetID
	t.mu.Unlock()
	if last == nil {
		return nil, ErrNoActiveSession
	}
	set, err := t.sets.Get(setID)
	if err != nil {
		return nil, err
	}
	return session.BuildSummary(last, t.GetCardsWithProgress(ctx, set), tr), nil
}

func copyStats(s *session.Stats) *session.Stats {
	c := *s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}
