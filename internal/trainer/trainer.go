// Package trainer is the single entry point the CLI and TUI use. It wires the
// user directory, set catalog, settings, progress and mastery together and
// owns the active set and practice session.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/history"
	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/progress"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/settings"
	"github.com/abhisek/flashmath/internal/store"
	"github.com/abhisek/flashmath/internal/users"
)

var (
	ErrCardNotFound    = errors.New("card not found in active set")
	ErrNoActiveSet     = errors.New("no active set")
	ErrNoActiveSession = errors.New("no active session")
	ErrLevelLocked     = errors.New("level is locked")
)

// Deps configures a Trainer. Only KV is required.
type Deps struct {
	KV           store.KV
	Log          *zap.Logger
	SeedDefaults bool
	Rand         engine.Rand
	Now          func() time.Time
}

// Trainer is safe for concurrent use.
type Trainer struct {
	log      *zap.Logger
	kv       store.KV
	seed     bool
	now      func() time.Time
	users    *users.Directory
	sets     *problemset.Store
	settings *settings.Store
	progress *progress.Store
	history  *history.Log

	mu           sync.Mutex
	rng          engine.Rand
	actAs        string
	currentSetID string
	session      *session.Stats
	sessionSetID string
	wasMastered  bool // set already mastered at the session level when it started
	transition   *mastery.StateTransition
	last         *session.Stats
}

// New creates a Trainer. Call Init before use.
func New(d Deps) *Trainer {
	log := logger.OrNop(d.Log)
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Trainer{
		log:      log,
		kv:       d.KV,
		seed:     d.SeedDefaults,
		now:      now,
		rng:      rng,
		users:    users.New(d.KV, log.Named("users")),
		sets:     problemset.New(d.KV, log.Named("sets")),
		settings: settings.New(d.KV, log.Named("settings")),
		progress: progress.New(d.KV, log.Named("progress")),
		history:  history.New(d.KV, log.Named("history")),
	}
}

// Init migrates legacy data, then loads users and the catalog. Migration
// failures are logged and do not stop startup.
func (t *Trainer) Init(ctx context.Context) {
	res, err := store.MigrateLegacy(ctx, t.kv)
	switch {
	case err != nil:
		t.log.Warn("legacy migration failed", zap.Error(err))
	case res.Ran && res.CardsMigrated > 0:
		t.log.Info("migrated legacy progress",
			zap.String("user", store.LegacyUser),
			zap.Int("cards", res.CardsMigrated),
			zap.Int("sets", res.SetsRewritten))
	}

	t.users.Init(ctx)
	t.sets.Load(ctx)
	if t.seed {
		t.sets.SeedDefaults(ctx)
	}
}

// Progress exposes the progress store for change subscriptions.
func (t *Trainer) Progress() *progress.Store { return t.progress }

// --- users ---

// CurrentUser is the user every per-user operation acts on.
func (t *Trainer) CurrentUser() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentUserLocked()
}

func (t *Trainer) currentUserLocked() string {
	if t.actAs != "" {
		return t.actAs
	}
	return t.users.Current()
}

// ActAs makes the trainer act for name without changing the saved current
// user. An empty name returns to the saved user.
func (t *Trainer) ActAs(name string) error {
	if name != "" && !t.users.Exists(name) {
		return fmt.Errorf("%w: %s", users.ErrUserNotFound, name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actAs = name
	return nil
}

func (t *Trainer) Users() []users.User { return t.users.List() }

func (t *Trainer) CreateUser(ctx context.Context, name string) (users.User, error) {
	return t.users.Create(ctx, name)
}

// SwitchUser changes the saved current user. Any running session is dropped.
func (t *Trainer) SwitchUser(ctx context.Context, name string) error {
	if err := t.users.Switch(ctx, name); err != nil {
		return err
	}
	t.mu.Lock()
	t.actAs = ""
	t.session = nil
	t.transition = nil
	t.mu.Unlock()
	return nil
}

// DeleteUser removes a profile with its progress, mastery and settings.
func (t *Trainer) DeleteUser(ctx context.Context, name string) error {
	if err := t.users.Delete(ctx, name); err != nil {
		return err
	}
	t.progress.DeleteUser(ctx, name)
	t.settings.Delete(ctx, name)
	t.history.Delete(ctx, name)

	t.mu.Lock()
	if t.actAs == name {
		t.actAs = ""
	}
	t.mu.Unlock()
	t.log.Info("user deleted", zap.String("user", name))
	return nil
}

// --- sets ---

func (t *Trainer) Sets() []problemset.MathSet { return t.sets.All() }

func (t *Trainer) Set(id string) (problemset.MathSet, error) { return t.sets.Get(id) }

func (t *Trainer) CreateSet(ctx context.Context, name string, problems []problemset.Problem) (problemset.MathSet, error) {
	return t.sets.Add(ctx, name, problems)
}

func (t *Trainer) UpdateSet(ctx context.Context, id, name string, problems []problemset.Problem) (problemset.MathSet, error) {
	return t.sets.Update(ctx, id, name, problems)
}

// DeleteSet removes a set and every user's progress and mastery for it.
func (t *Trainer) DeleteSet(ctx context.Context, id string) error {
	removed, err := t.sets.Delete(ctx, id)
	if err != nil {
		return err
	}
	t.progress.PurgeSet(ctx, removed.ID, removed.CardIDs())

	t.mu.Lock()
	if t.currentSetID == id {
		t.currentSetID = ""
	}
	if t.session != nil && t.sessionSetID == id {
		t.session = nil
	}
	t.mu.Unlock()
	return nil
}

func (t *Trainer) ImportSets(ctx context.Context, r io.Reader) ([]problemset.MathSet, error) {
	return t.sets.Import(ctx, r)
}

func (t *Trainer) ExportSets(w io.Writer, ids ...string) error {
	return t.sets.Export(w, ids...)
}

// --- settings ---

func (t *Trainer) Settings(ctx context.Context) settings.Settings {
	return t.settings.Load(ctx, t.CurrentUser())
}

func (t *Trainer) SaveSettings(ctx context.Context, s settings.Settings) settings.Settings {
	return t.settings.Save(ctx, t.CurrentUser(), s)
}

// --- active set ---

// SetCurrentSet selects the set to practice.
func (t *Trainer) SetCurrentSet(id string) error {
	if _, err := t.sets.Get(id); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentSetID = id
	return nil
}

// ClearCurrentSet deselects the active set.
func (t *Trainer) ClearCurrentSet() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentSetID = ""
}

// CurrentSet returns the active set.
func (t *Trainer) CurrentSet() (problemset.MathSet, error) {
	t.mu.Lock()
	id := t.currentSetID
	t.mu.Unlock()
	if id == "" {
		return problemset.MathSet{}, ErrNoActiveSet
	}
	return t.sets.Get(id)
}

// GetCardsWithProgress merges set with the current user's progress.
func (t *Trainer) GetCardsWithProgress(ctx context.Context, set problemset.MathSet) []progress.MergedCard {
	return t.progress.MergeSet(ctx, t.CurrentUser(), set)
}

// SelectNextCard draws the next card, avoiding excludeID when possible.
func (t *Trainer) SelectNextCard(cards []progress.MergedCard, excludeID string) (progress.MergedCard, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return engine.SelectNextCard(t.rng, cards, excludeID)
}

// --- mastery ---

func (t *Trainer) controller() *mastery.Controller {
	return mastery.NewController(t.progress, t.CurrentUser(), t.log.Named("mastery"))
}

// IsSetMasteredAtLevel reports whether every card of the set is mastered at level.
func (t *Trainer) IsSetMasteredAtLevel(ctx context.Context, setID string, level mastery.Level) (bool, error) {
	set, err := t.sets.Get(setID)
	if err != nil {
		return false, err
	}
	return t.controller().IsSetMasteredAtLevel(ctx, set.CardIDs(), level), nil
}

func (t *Trainer) IsLevelUnlocked(ctx context.Context, setID string, level mastery.Level) bool {
	return t.controller().IsLevelUnlocked(ctx, setID, level)
}

func (t *Trainer) UnlockedLevels(ctx context.Context, setID string) []mastery.Level {
	return t.controller().UnlockedLevels(ctx, setID)
}

func (t *Trainer) RecordSetMastery(ctx context.Context, setID string, level mastery.Level) *mastery.StateTransition {
	return t.controller().RecordSetMastery(ctx, setID, level)
}

func (t *Trainer) SetMastery(ctx context.Context, setID string) (mastery.Level, bool) {
	return t.progress.SetMastery(ctx, t.CurrentUser(), setID)
}

// ResetSetProgress clears the current user's mastery and card progress for a set.
func (t *Trainer) ResetSetProgress(ctx context.Context, setID string) error {
	set, err := t.sets.Get(setID)
	if err != nil {
		return err
	}
	t.controller().ResetSetMastery(ctx, set.ID, set.CardIDs())
	return nil
}
