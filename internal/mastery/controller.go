package mastery

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
)

// ProgressSource is the per-user progress storage the controller reads and
// records mastery through.
type ProgressSource interface {
	// MasteredLevels returns the levels a card is mastered at. The second
	// value is false when the user has no progress record for the card.
	MasteredLevels(ctx context.Context, user, cardID string) ([]Level, bool)

	// AddMasteredLevel appends level to the card's mastered levels. It
	// returns false without writing when the card has no progress record.
	AddMasteredLevel(ctx context.Context, user, cardID string, level Level) bool

	SetMastery(ctx context.Context, user, setID string) (Level, bool)
	PutSetMastery(ctx context.Context, user, setID string, level Level)
	DeleteSetMastery(ctx context.Context, user, setID string)

	// ResetSetProgress deletes the progress records of the given cards.
	ResetSetProgress(ctx context.Context, user string, cardIDs []string)
}

// Controller decides card and set mastery and level unlocks for one user.
type Controller struct {
	src  ProgressSource
	user string
	log  *zap.Logger
}

// NewController creates a controller scoped to user.
func NewController(src ProgressSource, user string, log *zap.Logger) *Controller {
	log = logger.OrNop(log)
	return &Controller{src: src, user: user, log: log}
}

// User returns the user the controller is scoped to.
func (c *Controller) User() string { return c.user }

// IsCardMasteredAtLevel reports whether the card has been mastered at level.
func (c *Controller) IsCardMasteredAtLevel(ctx context.Context, cardID string, level Level) bool {
	levels, ok := c.src.MasteredLevels(ctx, c.user, cardID)
	return ok && slices.Contains(levels, level)
}

// RecordCardLevelMastery marks the card mastered at level. It is a no-op when
// the card is already mastered there or has never been attempted. Reports
// whether a new level was recorded.
func (c *Controller) RecordCardLevelMastery(ctx context.Context, cardID string, level Level) bool {
	levels, ok := c.src.MasteredLevels(ctx, c.user, cardID)
	if !ok || slices.Contains(levels, level) {
		return false
	}
	return c.src.AddMasteredLevel(ctx, c.user, cardID, level)
}

// IsSetMasteredAtLevel reports whether every card is mastered at level.
// An empty set is never mastered.
func (c *Controller) IsSetMasteredAtLevel(ctx context.Context, cardIDs []string, level Level) bool {
	if len(cardIDs) == 0 {
		return false
	}
	for _, id := range cardIDs {
		if !c.IsCardMasteredAtLevel(ctx, id, level) {
			return false
		}
	}
	return true
}

// SetMastery returns the highest level the set is recorded as mastered at.
func (c *Controller) SetMastery(ctx context.Context, setID string) (Level, bool) {
	return c.src.SetMastery(ctx, c.user, setID)
}

// State returns the set's lifecycle state.
func (c *Controller) State(ctx context.Context, setID string) SetState {
	return StateOf(c.src.SetMastery(ctx, c.user, setID))
}

// RecordSetMastery stores level as the set's mastery when it is strictly
// higher than the stored one. It returns the transition, or nil when nothing
// changed.
func (c *Controller) RecordSetMastery(ctx context.Context, setID string, level Level) *StateTransition {
	if !level.Valid() {
		return nil
	}
	stored, ok := c.src.SetMastery(ctx, c.user, setID)
	if ok && stored.Rank() >= level.Rank() {
		return nil
	}

	c.src.PutSetMastery(ctx, c.user, setID, level)
	t := &StateTransition{
		SetID: setID,
		From:  StateOf(stored, ok),
		To:    StateOf(level, true),
		Level: level,
	}
	c.log.Info("set mastery recorded",
		zap.String("user", c.user),
		zap.String("set", setID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)))
	return t
}

// IsLevelUnlocked reports whether level may be practiced for the set: the
// first level always, any later level once the previous one is mastered.
func (c *Controller) IsLevelUnlocked(ctx context.Context, setID string, level Level) bool {
	prev, ok := level.Prev()
	if !ok {
		return level == Level1
	}
	stored, has := c.src.SetMastery(ctx, c.user, setID)
	return has && stored.AtLeast(prev)
}

// UnlockedLevels returns the levels currently open for the set, in order.
func (c *Controller) UnlockedLevels(ctx context.Context, setID string) []Level {
	out := make([]Level, 0, len(Levels))
	for _, l := range Levels {
		if c.IsLevelUnlocked(ctx, setID, l) {
			out = append(out, l)
		}
	}
	return out
}

// ResetSetMastery clears the set's stored mastery and deletes the progress of
// all its cards, mastered levels included.
func (c *Controller) ResetSetMastery(ctx context.Context, setID string, cardIDs []string) {
	c.src.DeleteSetMastery(ctx, c.user, setID)
	c.src.ResetSetProgress(ctx, c.user, cardIDs)
	c.log.Info("set mastery reset", zap.String("user", c.user), zap.String("set", setID))
}
