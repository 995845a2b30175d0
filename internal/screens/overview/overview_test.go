package overview

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/practice"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/router"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/store/storetest"
	"github.com/abhisek/flashmath/internal/trainer"
)

func testEnv(t *testing.T) screen.Env {
	t.Helper()
	ctx := context.Background()
	tr := trainer.New(trainer.Deps{KV: storetest.Open(t), SeedDefaults: true})
	tr.Init(ctx)
	return screen.Env{Ctx: ctx, Trainer: tr, Timing: practice.DefaultTiming(), Log: zap.NewNop()}
}

func learn(t *testing.T, env screen.Env, cardID string) {
	t.Helper()
	p := progress.DefaultProgress()
	p.Stats = progress.CardStats{TotalAttempts: 3, CorrectAttempts: 3, FastAttempts: 3}
	p.MasteredAtLevels = []mastery.Level{mastery.Level1}
	env.Trainer.Progress().UpdateCardProgress(env.Ctx, env.Trainer.CurrentUser(), cardID, progress.FullUpdate(p))
}

func TestOverview_GroupsLearnedCards(t *testing.T) {
	env := testEnv(t)
	learn(t, env, "3x2")
	s := New(env, "mult-3s")

	view := s.View(100, 40)
	for _, want := range []string{"Multiplication 3s", "1/10 learned", "LEARNING", "LEARNED", "3 x 2", "Level 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	if s.rows[s.cursor].kind != rowCard {
		t.Fatal("cursor should start on a card")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if got := s.rows[s.cursor].card.ID; got != "3x2" {
		t.Errorf("tab moved to %q, want 3x2", got)
	}
}

func TestOverview_CursorSkipsHeaders(t *testing.T) {
	s := New(testEnv(t), "mult-4s")
	if s.rows[0].kind != rowSectionHeader || s.cursor != 1 {
		t.Fatalf("cursor = %d, want first card", s.cursor)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.cursor != 1 {
		t.Errorf("cursor moved onto header: %d", s.cursor)
	}
	for range 20 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	if s.cursor != len(s.rows)-1 {
		t.Errorf("cursor = %d, want last row %d", s.cursor, len(s.rows)-1)
	}
}

func TestOverview_ResetNeedsConfirmation(t *testing.T) {
	env := testEnv(t)
	learn(t, env, "3x2")
	s := New(env, "mult-3s")

	s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if !strings.Contains(s.View(100, 40), "(y/n)") {
		t.Fatal("expected confirmation prompt")
	}
	s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if s.overview.Learned != 1 {
		t.Fatal("cancel must keep progress")
	}

	s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	s.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	if s.overview.Learned != 0 {
		t.Errorf("learned = %d after reset", s.overview.Learned)
	}
}

func TestOverview_EnterOpensSetup(t *testing.T) {
	s := New(testEnv(t), "mult-8s")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok || msg.Screen.Title() != "New Session" {
		t.Errorf("got %#v", msg)
	}
}

func TestOverview_MissingSetPops(t *testing.T) {
	s := New(testEnv(t), "nope")
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestOverview_HeaderMarksFullMastery(t *testing.T) {
	env := testEnv(t)
	env.Trainer.RecordSetMastery(env.Ctx, "mult-3s", mastery.Level3)
	if view := New(env, "mult-3s").View(200, 40); strings.Contains(view, "every level mastered") {
		t.Error("level 3 is not the last level")
	}

	env.Trainer.RecordSetMastery(env.Ctx, "mult-3s", mastery.Ninja)
	if view := New(env, "mult-3s").View(200, 40); !strings.Contains(view, "every level mastered") {
		t.Error("expected full mastery in header")
	}
}
