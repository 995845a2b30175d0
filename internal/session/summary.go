package session

import (
	"math"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/progress"
)

// NeedingWorkLimit caps the cards listed as needing work.
const NeedingWorkLimit = 10

// Summary holds the data displayed on the summary screen.
type Summary struct {
	Stats            Stats
	AccuracyPct      int
	AverageSeconds   float64
	CardsNeedingWork []progress.MergedCard
	LearnedCount     int
	TotalCards       int
	SetMastered      *mastery.StateTransition
}

// AllLearned reports whether no card needs more work.
func (s *Summary) AllLearned() bool {
	return s.TotalCards > 0 && len(s.CardsNeedingWork) == 0
}

// BuildSummary combines session stats with the set's merged cards after the
// session. transition is the set mastery change the session earned, if any.
func BuildSummary(stats *Stats, cards []progress.MergedCard, transition *mastery.StateTransition) *Summary {
	return &Summary{
		Stats:            *stats,
		AccuracyPct:      int(math.Round(stats.Accuracy() * 100)),
		AverageSeconds:   math.Round(stats.AverageTimeMs/100) / 10,
		CardsNeedingWork: engine.CardsNeedingWork(cards, NeedingWorkLimit),
		LearnedCount:     engine.LearnedCount(cards),
		TotalCards:       len(cards),
		SetMastered:      transition,
	}
}
