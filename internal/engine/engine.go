// Package engine holds the adaptive practice rules: which card to show next
// and how an answer changes a card's weight and statistics. Everything here
// is pure; persistence is the caller's job.
package engine

import (
	"cmp"
	"slices"

	"github.com/abhisek/flashmath/internal/progress"
)

// Weight rules.
const (
	MinWeight     = progress.MinWeight
	MaxWeight     = progress.MaxWeight
	DefaultWeight = progress.DefaultWeight

	IncorrectPenalty = 5
	FastReward       = 1
	SlowPenalty      = 1
)

// ClampWeight bounds w to [MinWeight, MaxWeight].
func ClampWeight(w int) int { return progress.ClampWeight(w) }

// Rand is the randomness source used for selection. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// SelectNextCard picks a card with probability proportional to its weight,
// skipping excludeID unless it is the only card. It reports false only for
// an empty pool.
func SelectNextCard(rng Rand, cards []progress.MergedCard, excludeID string) (progress.MergedCard, bool) {
	pool := cards
	if excludeID != "" {
		filtered := make([]progress.MergedCard, 0, len(cards))
		for _, c := range cards {
			if c.ID != excludeID {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}
	if len(pool) == 0 {
		return progress.MergedCard{}, false
	}

	total := 0
	for _, c := range pool {
		total += max(0, c.Weight)
	}
	if total == 0 {
		return pool[rng.IntN(len(pool))], true
	}

	r := rng.Float64() * float64(total)
	cum := 0
	for _, c := range pool {
		cum += max(0, c.Weight)
		if r < float64(cum) {
			return c, true
		}
	}
	return pool[len(pool)-1], true
}

// AnswerResult classifies one submitted answer.
type AnswerResult struct {
	IsCorrect bool
	IsFast    bool
	IsSlow    bool
	NewWeight int
}

// Evaluation is an AnswerResult plus the card's progress after the answer.
type Evaluation struct {
	AnswerResult
	Progress progress.UserCardProgress
}

// EvaluateAnswer checks userAnswer against the card and computes the card's
// next progress. Correct answers faster than thresholdMs are fast, the rest
// slow.
func EvaluateAnswer(card progress.MergedCard, userAnswer, elapsedMs, thresholdMs int) Evaluation {
	correct := userAnswer == card.Answer
	res := AnswerResult{
		IsCorrect: correct,
		IsFast:    correct && elapsedMs < thresholdMs,
		IsSlow:    correct && elapsedMs >= thresholdMs,
	}

	next := card.UserCardProgress
	next.MasteredAtLevels = slices.Clone(next.MasteredAtLevels)

	switch {
	case !correct:
		res.NewWeight = ClampWeight(next.Weight + IncorrectPenalty)
		next.ConsecutiveCorrect = 0
		next.Stats.IncorrectAttempts++
	case res.IsFast:
		res.NewWeight = ClampWeight(next.Weight - FastReward)
		next.ConsecutiveCorrect++
		next.Stats.CorrectAttempts++
		next.Stats.FastAttempts++
	default:
		res.NewWeight = ClampWeight(next.Weight + SlowPenalty)
		next.ConsecutiveCorrect++
		next.Stats.CorrectAttempts++
		next.Stats.SlowAttempts++
	}
	next.Stats.TotalAttempts++
	next.Weight = res.NewWeight
	d := elapsedMs
	next.LastDurationMs = &d

	return Evaluation{AnswerResult: res, Progress: next}
}

// Feedback is the user-facing verdict on an answer.
type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "correct"
	FeedbackSlow      Feedback = "slow"
	FeedbackIncorrect Feedback = "incorrect"
)

// Classify maps a result to its feedback.
func Classify(r AnswerResult) Feedback {
	switch {
	case !r.IsCorrect:
		return FeedbackIncorrect
	case r.IsSlow:
		return FeedbackSlow
	default:
		return FeedbackCorrect
	}
}

// Learned reports whether a card is at the weight floor after being tried.
func Learned(c progress.MergedCard) bool {
	return c.Weight == MinWeight && c.Stats.TotalAttempts > 0
}

// LearnedCount counts learned cards.
func LearnedCount(cards []progress.MergedCard) int {
	n := 0
	for _, c := range cards {
		if Learned(c) {
			n++
		}
	}
	return n
}

// CardsNeedingWork returns up to n cards above the weight floor, heaviest
// first. Ties keep set order.
func CardsNeedingWork(cards []progress.MergedCard, n int) []progress.MergedCard {
	var out []progress.MergedCard
	for _, c := range cards {
		if c.Weight > MinWeight {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b progress.MergedCard) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
