package trainer

import (
	"context"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
)

// Overview is the current user's standing on one set.
type Overview struct {
	Set            problemset.MathSet
	Cards          []progress.MergedCard
	Learned        int
	Attempts       int
	Accuracy       float64 // over all attempts, 0 when none
	Mastery        mastery.Level
	HasMastery     bool
	State          mastery.SetState
	UnlockedLevels []mastery.Level
}

// Overview summarizes the current user's progress on a set.
func (t *Trainer) Overview(ctx context.Context, setID string) (Overview, error) {
	set, err := t.sets.Get(setID)
	if err != nil {
		return Overview{}, err
	}
	cards := t.GetCardsWithProgress(ctx, set)
	ctrl := t.controller()
	level, ok := ctrl.SetMastery(ctx, set.ID)

	o := Overview{
		Set:            set,
		Cards:          cards,
		Learned:        engine.LearnedCount(cards),
		Mastery:        level,
		HasMastery:     ok,
		State:          mastery.StateOf(level, ok),
		UnlockedLevels: ctrl.UnlockedLevels(ctx, set.ID),
	}
	correct := 0
	for _, c := range cards {
		o.Attempts += c.Stats.TotalAttempts
		correct += c.Stats.CorrectAttempts
	}
	if o.Attempts > 0 {
		o.Accuracy = float64(correct) / float64(o.Attempts)
	}
	return o, nil
}
