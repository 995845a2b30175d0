package progress

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
	"github.com/abhisek/flashmath/internal/store"
)

var _ mastery.ProgressSource = (*Store)(nil)

// Store owns per-user card progress and set mastery. Each user's records
// are loaded on first use and written through on every change. Read
// failures count as no data and write failures are logged; the in-memory
// copy stays current either way.
type Store struct {
	kv  store.KV
	log *zap.Logger

	mu       sync.Mutex
	progress map[string]map[string]UserCardProgress // user -> card -> progress
	mastery  map[string]map[string]mastery.Level    // user -> set -> level

	rev     uint64
	nextSub int
	subs    map[int]func(rev uint64)
}

// New creates a progress store over kv.
func New(kv store.KV, log *zap.Logger) *Store {
	log = logger.OrNop(log)
	return &Store{
		kv:       kv,
		log:      log,
		progress: make(map[string]map[string]UserCardProgress),
		mastery:  make(map[string]map[string]mastery.Level),
		subs:     make(map[int]func(uint64)),
	}
}

// Revision increases on every progress or mastery change.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Subscribe registers fn to run after every change with the new revision.
// fn runs without the store lock held. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(rev uint64)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// changed bumps the revision and returns the subscribers to notify.
// Callers hold s.mu.
func (s *Store) changed() (uint64, []func(uint64)) {
	s.rev++
	fns := make([]func(uint64), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return s.rev, fns
}

func notify(rev uint64, fns []func(uint64)) {
	for _, fn := range fns {
		fn(rev)
	}
}

// GetCardProgress returns the user's progress on a card, if any.
func (s *Store) GetCardProgress(ctx context.Context, user, cardID string) (UserCardProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.userProgress(ctx, user)[cardID]
	if !ok {
		return UserCardProgress{}, false
	}
	return p.clone(), true
}

// UpdateCardProgress merges u into the card's progress, creating a default
// record first when none exists, and persists it. Stats merge per counter
// and mastered levels are kept unless u sets them. Returns the new progress.
func (s *Store) UpdateCardProgress(ctx context.Context, user, cardID string, u Update) UserCardProgress {
	s.mu.Lock()
	m := s.userProgress(ctx, user)
	p, ok := m[cardID]
	if !ok {
		p = DefaultProgress()
	}
	p = u.apply(p)
	m[cardID] = p
	s.saveProgress(ctx, user)
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
	return p.clone()
}

// ResetSetProgress deletes the user's progress for the given cards. The next
// merge rebuilds defaults.
func (s *Store) ResetSetProgress(ctx context.Context, user string, cardIDs []string) {
	s.mu.Lock()
	m := s.userProgress(ctx, user)
	for _, id := range cardIDs {
		delete(m, id)
	}
	s.saveProgress(ctx, user)
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
}

// MergeCardWithProgress joins card with the user's current progress, or
// defaults when the card was never attempted.
func (s *Store) MergeCardWithProgress(ctx context.Context, user string, card problemset.SetCard) MergedCard {
	p, ok := s.GetCardProgress(ctx, user, card.ID)
	if !ok {
		p = DefaultProgress()
	}
	return MergedCard{SetCard: card, UserCardProgress: p, HasProgress: ok}
}

// MergeSet merges every card of set, in set order.
func (s *Store) MergeSet(ctx context.Context, user string, set problemset.MathSet) []MergedCard {
	s.mu.Lock()
	m := s.userProgress(ctx, user)
	out := make([]MergedCard, len(set.Cards))
	for i, c := range set.Cards {
		p, ok := m[c.ID]
		if ok {
			p = p.clone()
		} else {
			p = DefaultProgress()
		}
		out[i] = MergedCard{SetCard: c, UserCardProgress: p, HasProgress: ok}
	}
	s.mu.Unlock()
	return out
}

// MasteredLevels implements mastery.ProgressSource.
func (s *Store) MasteredLevels(ctx context.Context, user, cardID string) ([]mastery.Level, bool) {
	p, ok := s.GetCardProgress(ctx, user, cardID)
	if !ok {
		return nil, false
	}
	return p.MasteredAtLevels, true
}

// AddMasteredLevel implements mastery.ProgressSource.
func (s *Store) AddMasteredLevel(ctx context.Context, user, cardID string, level mastery.Level) bool {
	s.mu.Lock()
	m := s.userProgress(ctx, user)
	p, ok := m[cardID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if p.MasteredAt(level) {
		s.mu.Unlock()
		return true
	}
	p = p.clone()
	p.MasteredAtLevels = append(p.MasteredAtLevels, level)
	m[cardID] = p
	s.saveProgress(ctx, user)
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
	return true
}

// SetMastery returns the highest level the user mastered the set at.
func (s *Store) SetMastery(ctx context.Context, user, setID string) (mastery.Level, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userMastery(ctx, user)[setID]
	return l, ok
}

// PutSetMastery stores level unconditionally; the mastery controller
// enforces monotonicity.
func (s *Store) PutSetMastery(ctx context.Context, user, setID string, level mastery.Level) {
	s.mu.Lock()
	s.userMastery(ctx, user)[setID] = level
	s.saveMastery(ctx, user)
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
}

// DeleteSetMastery forgets the user's mastery of the set.
func (s *Store) DeleteSetMastery(ctx context.Context, user, setID string) {
	s.mu.Lock()
	delete(s.userMastery(ctx, user), setID)
	s.saveMastery(ctx, user)
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
}

// DeleteUser removes all progress and mastery of user.
func (s *Store) DeleteUser(ctx context.Context, user string) {
	s.mu.Lock()
	delete(s.progress, user)
	delete(s.mastery, user)
	for _, key := range []string{store.ProgressKey(user), store.MasteryKey(user)} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("delete user data failed", zap.Error(err), zap.String("key", key))
		}
	}
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
}

// PurgeSet removes a deleted set's mastery and card progress for every user
// that has stored data.
func (s *Store) PurgeSet(ctx context.Context, setID string, cardIDs []string) {
	s.mu.Lock()
	for _, user := range s.knownUsers(ctx) {
		pm := s.userProgress(ctx, user)
		for _, id := range cardIDs {
			delete(pm, id)
		}
		s.saveProgress(ctx, user)

		delete(s.userMastery(ctx, user), setID)
		s.saveMastery(ctx, user)
	}
	rev, fns := s.changed()
	s.mu.Unlock()

	notify(rev, fns)
}

// knownUsers lists users with cached or stored records. Callers hold s.mu.
func (s *Store) knownUsers(ctx context.Context) []string {
	seen := make(map[string]bool)
	var users []string
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			users = append(users, u)
		}
	}
	for u := range s.progress {
		add(u)
	}
	for u := range s.mastery {
		add(u)
	}
	for _, prefix := range []string{store.ProgressPrefix, store.MasteryPrefix} {
		keys, err := s.kv.Keys(ctx, prefix)
		if err != nil {
			s.log.Warn("list user keys failed", zap.Error(err), zap.String("prefix", prefix))
			continue
		}
		for _, k := range keys {
			add(strings.TrimPrefix(k, prefix))
		}
	}
	return users
}

// userProgress returns the cached progress map of user, loading it first if
// needed. Callers hold s.mu.
func (s *Store) userProgress(ctx context.Context, user string) map[string]UserCardProgress {
	if m, ok := s.progress[user]; ok {
		return m
	}
	m := make(map[string]UserCardProgress)
	if err := store.GetJSON(ctx, s.kv, store.ProgressKey(user), &m); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("load progress failed", zap.Error(err), zap.String("user", user))
		}
		m = nil
	}
	if m == nil {
		m = make(map[string]UserCardProgress)
	}
	for id, p := range m {
		p.Weight = ClampWeight(p.Weight)
		p.MasteredAtLevels = validLevels(p.MasteredAtLevels)
		m[id] = p.clone()
	}
	s.progress[user] = m
	return m
}

// validLevels drops unknown levels.
func validLevels(levels []mastery.Level) []mastery.Level {
	out := make([]mastery.Level, 0, len(levels))
	for _, l := range levels {
		if l.Valid() {
			out = append(out, l)
		}
	}
	return out
}

// userMastery returns the cached set mastery map of user. Unknown levels in
// storage are dropped. Callers hold s.mu.
func (s *Store) userMastery(ctx context.Context, user string) map[string]mastery.Level {
	if m, ok := s.mastery[user]; ok {
		return m
	}
	m := make(map[string]mastery.Level)
	if err := store.GetJSON(ctx, s.kv, store.MasteryKey(user), &m); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("load mastery failed", zap.Error(err), zap.String("user", user))
		}
		m = nil
	}
	if m == nil {
		m = make(map[string]mastery.Level)
	}
	for id, l := range m {
		if !l.Valid() {
			delete(m, id)
		}
	}
	s.mastery[user] = m
	return m
}

func (s *Store) saveProgress(ctx context.Context, user string) {
	if err := store.SetJSON(ctx, s.kv, store.ProgressKey(user), s.progress[user]); err != nil {
		s.log.Warn("save progress failed", zap.Error(err), zap.String("user", user))
	}
}

func (s *Store) saveMastery(ctx context.Context, user string) {
	if err := store.SetJSON(ctx, s.kv, store.MasteryKey(user), s.mastery[user]); err != nil {
		s.log.Warn("save mastery failed", zap.Error(err), zap.String("user", user))
	}
}
