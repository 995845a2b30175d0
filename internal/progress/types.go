package progress

import (
	"slices"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
)

// Weight bounds. Every stored weight lies in [MinWeight, MaxWeight].
const (
	MinWeight     = 1
	MaxWeight     = 7
	DefaultWeight = 1
)

// ClampWeight bounds w to [MinWeight, MaxWeight].
func ClampWeight(w int) int {
	return min(MaxWeight, max(MinWeight, w))
}

// CardStats counts a user's attempts on one card.
// Total = Correct + Incorrect and Correct = Fast + Slow.
type CardStats struct {
	TotalAttempts     int `json:"totalAttempts"`
	CorrectAttempts   int `json:"correctAttempts"`
	FastAttempts      int `json:"fastAttempts"`
	SlowAttempts      int `json:"slowAttempts"`
	IncorrectAttempts int `json:"incorrectAttempts"`
}

// UserCardProgress is one user's mutable state for one card.
type UserCardProgress struct {
	Weight             int             `json:"weight"`
	ConsecutiveCorrect int             `json:"consecutiveCorrect"`
	LastDurationMs     *int            `json:"lastDurationMs,omitempty"`
	Stats              CardStats       `json:"stats"`
	MasteredAtLevels   []mastery.Level `json:"masteredAtLevels"`
}

// DefaultProgress is the progress of a card never attempted.
func DefaultProgress() UserCardProgress {
	return UserCardProgress{Weight: DefaultWeight, MasteredAtLevels: []mastery.Level{}}
}

func (p UserCardProgress) clone() UserCardProgress {
	if p.LastDurationMs != nil {
		d := *p.LastDurationMs
		p.LastDurationMs = &d
	}
	p.MasteredAtLevels = slices.Clone(p.MasteredAtLevels)
	if p.MasteredAtLevels == nil {
		p.MasteredAtLevels = []mastery.Level{}
	}
	return p
}

// MasteredAt reports whether the card is mastered at level.
func (p UserCardProgress) MasteredAt(level mastery.Level) bool {
	return slices.Contains(p.MasteredAtLevels, level)
}

// MergedCard is a set card joined with the active user's progress. It is
// rebuilt on every access and never persisted.
type MergedCard struct {
	problemset.SetCard
	UserCardProgress

	// HasProgress is false when the progress fields are defaults.
	HasProgress bool
}

// StatsUpdate overrides individual stats counters; nil fields are kept.
type StatsUpdate struct {
	TotalAttempts     *int
	CorrectAttempts   *int
	FastAttempts      *int
	SlowAttempts      *int
	IncorrectAttempts *int
}

// Update is a partial progress change; nil fields are kept.
type Update struct {
	Weight             *int
	ConsecutiveCorrect *int
	LastDurationMs     *int
	Stats              *StatsUpdate
	MasteredAtLevels   *[]mastery.Level
}

// FullUpdate returns an Update that sets every field of p.
func FullUpdate(p UserCardProgress) Update {
	p = p.clone()
	return Update{
		Weight:             &p.Weight,
		ConsecutiveCorrect: &p.ConsecutiveCorrect,
		LastDurationMs:     p.LastDurationMs,
		Stats: &StatsUpdate{
			TotalAttempts:     &p.Stats.TotalAttempts,
			CorrectAttempts:   &p.Stats.CorrectAttempts,
			FastAttempts:      &p.Stats.FastAttempts,
			SlowAttempts:      &p.Stats.SlowAttempts,
			IncorrectAttempts: &p.Stats.IncorrectAttempts,
		},
		MasteredAtLevels: &p.MasteredAtLevels,
	}
}

func (u Update) apply(p UserCardProgress) UserCardProgress {
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.ConsecutiveCorrect != nil {
		p.ConsecutiveCorrect = max(0, *u.ConsecutiveCorrect)
	}
	if u.LastDurationMs != nil {
		d := *u.LastDurationMs
		p.LastDurationMs = &d
	}
	if s := u.Stats; s != nil {
		set := func(dst *int, src *int) {
			if src != nil {
				*dst = *src
			}
		}
		set(&p.Stats.TotalAttempts, s.TotalAttempts)
		set(&p.Stats.CorrectAttempts, s.CorrectAttempts)
		set(&p.Stats.FastAttempts, s.FastAttempts)
		set(&p.Stats.SlowAttempts, s.SlowAttempts)
		set(&p.Stats.IncorrectAttempts, s.IncorrectAttempts)
	}
	if u.MasteredAtLevels != nil {
		p.MasteredAtLevels = slices.Clone(*u.MasteredAtLevels)
	}
	p.Weight = ClampWeight(p.Weight)
	return p.clone()
}
