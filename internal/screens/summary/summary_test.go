package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/session"
)

func testSummary() *session.Summary {
	stats := session.New("mult-3s", session.ModeTimed, mastery.Level1, 60*time.Second, time.Now())
	stats.TotalQuestions = 14
	stats.CorrectAnswers = 11
	stats.FastAnswers = 8
	stats.SlowAnswers = 3
	stats.IncorrectAnswers = 3
	stats.AverageTimeMs = 2450

	hard := progress.MergedCard{
		SetCard:          problemset.SetCard{ID: "3x7", Question: "3 x 7", Answer: 21},
		UserCardProgress: progress.DefaultProgress(),
		HasProgress:      true,
	}
	hard.Weight = 5
	hard.Stats.TotalAttempts = 4
	hard.Stats.CorrectAttempts = 1

	return &session.Summary{
		Stats:            *stats,
		AccuracyPct:      79,
		AverageSeconds:   2.5,
		CardsNeedingWork: []progress.MergedCard{hard},
		LearnedCount:     9,
		TotalCards:       10,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary(), "Multiplication 3s", "time-up")
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary(), "Multiplication 3s", "time-up")
	view := s.View(80, 24)
	for _, want := range []string{"Time's up!", "Accuracy: 79%", "3 x 7", "Needs work"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_SetMastered(t *testing.T) {
	sum := testSummary()
	sum.CardsNeedingWork = nil
	sum.SetMastered = &mastery.StateTransition{SetID: "mult-3s", Level: mastery.Level1}
	view := New(sum, "Multiplication 3s", "mastered").View(80, 24)
	if !strings.Contains(view, "Set mastered at Level 1") {
		t.Error("expected set mastery banner")
	}
	if !strings.Contains(view, "Every card learned") {
		t.Error("expected all-learned message")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(testSummary(), "", "")
		_, cmd := s.Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			t.Fatalf("expected a command on key %v", code)
		}
		if _, ok := cmd().(router.PopToRootMsg); !ok {
			t.Errorf("expected PopToRootMsg on key %v", code)
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testSummary(), "", "")
	if len(s.KeyHints()) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(s.KeyHints()))
	}
}
