package session

import (
	"testing"
	"time"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	s := New("mult-3s", ModeTimed, mastery.Level2, 0, t0)
	if s.ID == "" {
		t.Error("expected a session ID")
	}
	if s.TimedDuration != DefaultTimedDuration {
		t.Errorf("TimedDuration = %v, want %v", s.TimedDuration, DefaultTimedDuration)
	}

	m := New("mult-3s", ModeMaster, mastery.Level1, 30*time.Second, t0)
	if m.TimedDuration != 0 {
		t.Errorf("master mode TimedDuration = %v, want 0", m.TimedDuration)
	}
	if m.ID == s.ID {
		t.Error("session IDs must differ")
	}
}

func TestRecord_RunningAverage(t *testing.T) {
	s := New("x", ModeMaster, mastery.Level1, 0, t0)

	s.Record(engine.AnswerResult{IsCorrect: true, IsFast: true}, 1000)
	s.Record(engine.AnswerResult{IsCorrect: true, IsSlow: true}, 4000)
	s.Record(engine.AnswerResult{}, 1000)

	if s.TotalQuestions != 3 || s.CorrectAnswers != 2 || s.FastAnswers != 1 || s.SlowAnswers != 1 || s.IncorrectAnswers != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.AverageTimeMs != 2000 {
		t.Errorf("AverageTimeMs = %v, want 2000", s.AverageTimeMs)
	}
	if got := s.Accuracy(); got < 0.66 || got > 0.67 {
		t.Errorf("Accuracy = %v, want 2/3", got)
	}
}

func TestFinish_Once(t *testing.T) {
	s := New("x", ModeTimed, mastery.Level1, 30*time.Second, t0)
	if got := s.Remaining(t0.Add(10 * time.Second)); got != 20*time.Second {
		t.Errorf("Remaining = %v, want 20s", got)
	}
	if got := s.Remaining(t0.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining past the end = %v, want 0", got)
	}

	s.Finish(t0.Add(30 * time.Second))
	s.Finish(t0.Add(time.Hour))
	if !s.Finished() {
		t.Fatal("expected finished")
	}
	if got := s.Elapsed(t0.Add(2 * time.Hour)); got != 30*time.Second {
		t.Errorf("Elapsed = %v, want 30s", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"master": ModeMaster, " Timed ": ModeTimed} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("zen"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30", 30 * time.Second, false},
		{"90s", 90 * time.Second, false},
		{"1m", 60 * time.Second, false},
		{"45", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func merged(id string, weight, attempts int) progress.MergedCard {
	p := progress.DefaultProgress()
	p.Weight = weight
	p.Stats.TotalAttempts = attempts
	return progress.MergedCard{SetCard: problemset.SetCard{ID: id}, UserCardProgress: p}
}

func TestBuildSummary(t *testing.T) {
	s := New("x", ModeMaster, mastery.Level1, 0, t0)
	s.Record(engine.AnswerResult{IsCorrect: true, IsFast: true}, 1234)
	s.Record(engine.AnswerResult{}, 2345)
	s.Finish(t0.Add(time.Minute))

	cards := []progress.MergedCard{merged("a", 1, 3), merged("b", 4, 2), merged("c", 1, 0)}
	tr := &mastery.StateTransition{SetID: "x", To: mastery.StateMasteredLevel1}
	sum := BuildSummary(s, cards, tr)

	if sum.AccuracyPct != 50 {
		t.Errorf("AccuracyPct = %d, want 50", sum.AccuracyPct)
	}
	if sum.AverageSeconds != 1.8 {
		t.Errorf("AverageSeconds = %v, want 1.8", sum.AverageSeconds)
	}
	if sum.LearnedCount != 1 || sum.TotalCards != 3 {
		t.Errorf("learned %d of %d, want 1 of 3", sum.LearnedCount, sum.TotalCards)
	}
	if len(sum.CardsNeedingWork) != 1 || sum.CardsNeedingWork[0].ID != "b" {
		t.Errorf("CardsNeedingWork = %+v", sum.CardsNeedingWork)
	}
	if sum.AllLearned() {
		t.Error("AllLearned should be false")
	}
	if sum.SetMastered != tr {
		t.Error("transition not carried")
	}
}
