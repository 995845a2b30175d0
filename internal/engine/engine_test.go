package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
)

func card(id string, answer, weight int) progress.MergedCard {
	p := progress.DefaultProgress()
	p.Weight = weight
	return progress.MergedCard{
		SetCard:          problemset.SetCard{ID: id, Question: id, Answer: answer},
		UserCardProgress: p,
	}
}

// fixedRand returns a constant draw.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

func TestSelectNextCard_Empty(t *testing.T) {
	_, ok := SelectNextCard(fixedRand{}, nil, "")
	assert.False(t, ok)
}

func TestSelectNextCard_Singleton(t *testing.T) {
	c := card("a", 1, 3)
	got, ok := SelectNextCard(fixedRand{f: 0.99}, []progress.MergedCard{c}, "a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestSelectNextCard_ExcludesPrevious(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	cards := []progress.MergedCard{card("a", 1, 7), card("b", 2, 1), card("c", 3, 2)}
	for range 1000 {
		got, ok := SelectNextCard(rng, cards, "a")
		require.True(t, ok)
		assert.NotEqual(t, "a", got.ID)
	}
}

func TestSelectNextCard_Cumulative(t *testing.T) {
	// Weights 1, 3, 2: total 6. Draws map onto [0,1) [1,4) [4,6).
	cards := []progress.MergedCard{card("a", 1, 1), card("b", 2, 3), card("c", 3, 2)}
	tests := []struct {
		f    float64
		want string
	}{
		{0, "a"},
		{0.16, "a"},
		{0.17, "b"},
		{0.66, "b"},
		{0.67, "c"},
		{0.999, "c"},
	}
	for _, tt := range tests {
		got, ok := SelectNextCard(fixedRand{f: tt.f}, cards, "")
		require.True(t, ok)
		assert.Equal(t, tt.want, got.ID, "draw %v", tt.f)
	}
}

func TestSelectNextCard_Distribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	cards := []progress.MergedCard{card("light", 1, 1), card("heavy", 2, 7)}
	counts := map[string]int{}
	for range 8000 {
		c, _ := SelectNextCard(rng, cards, "")
		counts[c.ID]++
	}
	assert.InDelta(t, 7000, counts["heavy"], 300)
}

func TestSelectNextCard_ZeroWeightsUniform(t *testing.T) {
	cards := []progress.MergedCard{card("a", 1, 0), card("b", 2, 0)}
	got, ok := SelectNextCard(fixedRand{n: 1}, cards, "")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestEvaluateAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		weight    int
		answer    int
		elapsed   int
		want      AnswerResult
		wantCons  int
		wantStats progress.CardStats
	}{
		{
			name: "correct and fast", weight: 3, answer: 15, elapsed: 1200,
			want:      AnswerResult{IsCorrect: true, IsFast: true, NewWeight: 2},
			wantCons:  3,
			wantStats: progress.CardStats{TotalAttempts: 1, CorrectAttempts: 1, FastAttempts: 1},
		},
		{
			name: "fast at floor", weight: 1, answer: 15, elapsed: 10,
			want:      AnswerResult{IsCorrect: true, IsFast: true, NewWeight: 1},
			wantCons:  3,
			wantStats: progress.CardStats{TotalAttempts: 1, CorrectAttempts: 1, FastAttempts: 1},
		},
		{
			name: "incorrect", weight: 3, answer: 14, elapsed: 500,
			want:      AnswerResult{NewWeight: 7},
			wantCons:  0,
			wantStats: progress.CardStats{TotalAttempts: 1, IncorrectAttempts: 1},
		},
		{
			name: "correct and slow", weight: 3, answer: 15, elapsed: 4000,
			want:      AnswerResult{IsCorrect: true, IsSlow: true, NewWeight: 4},
			wantCons:  3,
			wantStats: progress.CardStats{TotalAttempts: 1, CorrectAttempts: 1, SlowAttempts: 1},
		},
		{
			name: "exactly at threshold is slow", weight: 7, answer: 15, elapsed: 3000,
			want:      AnswerResult{IsCorrect: true, IsSlow: true, NewWeight: 7},
			wantCons:  3,
			wantStats: progress.CardStats{TotalAttempts: 1, CorrectAttempts: 1, SlowAttempts: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := card("3x5", 15, tt.weight)
			c.ConsecutiveCorrect = 2
			c.MasteredAtLevels = []mastery.Level{mastery.Level1}

			ev := EvaluateAnswer(c, tt.answer, tt.elapsed, 3000)
			assert.Equal(t, tt.want, ev.AnswerResult)
			assert.Equal(t, tt.want.NewWeight, ev.Progress.Weight)
			assert.Equal(t, tt.wantCons, ev.Progress.ConsecutiveCorrect)
			assert.Equal(t, tt.wantStats, ev.Progress.Stats)
			require.NotNil(t, ev.Progress.LastDurationMs)
			assert.Equal(t, tt.elapsed, *ev.Progress.LastDurationMs)
			assert.Equal(t, []mastery.Level{mastery.Level1}, ev.Progress.MasteredAtLevels)
		})
	}
}

func TestEvaluateAnswer_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	c := card("7x8", 56, DefaultWeight)
	for range 2000 {
		answer := 56
		if rng.IntN(3) == 0 {
			answer = rng.IntN(100)
		}
		ev := EvaluateAnswer(c, answer, rng.IntN(8000), 1000+rng.IntN(9000))
		c.UserCardProgress = ev.Progress

		s := c.Stats
		require.GreaterOrEqual(t, c.Weight, MinWeight)
		require.LessOrEqual(t, c.Weight, MaxWeight)
		require.Equal(t, s.TotalAttempts, s.CorrectAttempts+s.IncorrectAttempts)
		require.Equal(t, s.CorrectAttempts, s.FastAttempts+s.SlowAttempts)
		require.False(t, ev.IsFast && ev.IsSlow)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FeedbackIncorrect, Classify(AnswerResult{}))
	assert.Equal(t, FeedbackSlow, Classify(AnswerResult{IsCorrect: true, IsSlow: true}))
	assert.Equal(t, FeedbackCorrect, Classify(AnswerResult{IsCorrect: true, IsFast: true}))
}

func TestLearnedAndNeedingWork(t *testing.T) {
	tried := card("tried", 1, 1)
	tried.Stats.TotalAttempts = 2
	cards := []progress.MergedCard{
		card("fresh", 1, 1),
		tried,
		card("w3", 1, 3),
		card("w7", 1, 7),
		card("w3b", 1, 3),
	}
	assert.Equal(t, 1, LearnedCount(cards))

	work := CardsNeedingWork(cards, 10)
	ids := make([]string, len(work))
	for i, c := range work {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"w7", "w3", "w3b"}, ids)
	assert.Len(t, CardsNeedingWork(cards, 1), 1)
}
