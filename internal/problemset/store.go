package problemset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/store"
)

// Store owns the shared catalog of problem sets. Storage failures are logged
// and the in-memory catalog stays authoritative for the running process.
type Store struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time

	mu       sync.RWMutex
	sets     []MathSet
	pristine bool // nothing usable was stored when the catalog was loaded
}

// New creates a set store over kv.
func New(kv store.KV, log *zap.Logger) *Store {
	log = logger.OrNop(log)
	return &Store{kv: kv, log: log, now: time.Now}
}

// Load reads the catalog from storage. A missing, unreadable or invalid
// payload yields an empty catalog.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets = nil
	s.pristine = false

	raw, err := s.kv.Get(ctx, store.KeyMathSets)
	if err != nil {
		s.pristine = errors.Is(err, store.ErrNotFound)
		if !s.pristine {
			s.log.Warn("load sets failed", zap.Error(err), zap.String("key", store.KeyMathSets))
		}
		return
	}

	sets, err := validateSets([]byte(raw))
	if err != nil {
		s.log.Warn("stored sets rejected", zap.Error(err), zap.String("key", store.KeyMathSets))
		return
	}
	s.sets = sets
	s.pristine = len(sets) == 0
}

// SeedDefaults installs DefaultSets when the loaded catalog was empty.
// It reports whether it did.
func (s *Store) SeedDefaults(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pristine || len(s.sets) > 0 {
		return false
	}
	s.sets = DefaultSets(s.now().UTC())
	s.pristine = false
	s.persist(ctx)
	s.log.Debug("seeded default sets", zap.Int("count", len(s.sets)))
	return true
}

// All returns a copy of every set in catalog order.
func (s *Store) All() []MathSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MathSet, len(s.sets))
	for i, set := range s.sets {
		out[i] = set.clone()
	}
	return out
}

// Get returns the set with the given ID.
func (s *Store) Get(id string) (MathSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.sets[i].clone(), nil
	}
	return MathSet{}, fmt.Errorf("%w: %s", ErrSetNotFound, id)
}

// Add creates a set from problems. Repeated questions are kept once.
func (s *Store) Add(ctx context.Context, name string, problems []Problem) (MathSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MathSet{}, ErrEmptyName
	}
	problems = uniqueProblems(problems)
	if len(problems) == 0 {
		return MathSet{}, ErrEmptySet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	set := MathSet{
		ID:        "set-" + shortuuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, p := range problems {
		set.Cards = append(set.Cards, SetCard{ID: newCardID(name), Question: p.Question, Answer: p.Answer})
	}
	s.sets = append(s.sets, set)
	s.persist(ctx)
	return set.clone(), nil
}

// Update replaces a set's name and problems. Cards whose question already
// exists in the set keep their ID, so user progress on them survives.
func (s *Store) Update(ctx context.Context, id, name string, problems []Problem) (MathSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return MathSet{}, ErrEmptyName
	}
	problems = uniqueProblems(problems)
	if len(problems) == 0 {
		return MathSet{}, ErrEmptySet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return MathSet{}, fmt.Errorf("%w: %s", ErrSetNotFound, id)
	}
	existing := make(map[string]string, len(s.sets[i].Cards))
	for _, c := range s.sets[i].Cards {
		existing[c.Question] = c.ID
	}

	cards := make([]SetCard, 0, len(problems))
	for _, p := range problems {
		cid, ok := existing[p.Question]
		if !ok {
			cid = newCardID(name)
		}
		cards = append(cards, SetCard{ID: cid, Question: p.Question, Answer: p.Answer})
	}

	s.sets[i].Name = name
	s.sets[i].Cards = cards
	s.sets[i].UpdatedAt = s.now().UTC()
	s.persist(ctx)
	return s.sets[i].clone(), nil
}

// Delete removes a set and returns it so callers can cascade progress cleanup.
func (s *Store) Delete(ctx context.Context, id string) (MathSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return MathSet{}, fmt.Errorf("%w: %s", ErrSetNotFound, id)
	}
	removed := s.sets[i]
	s.sets = append(s.sets[:i], s.sets[i+1:]...)
	s.persist(ctx)
	return removed, nil
}

// Import adds the sets of a JSON document. The document must match the set
// schema and every answer must match its question. Set and card IDs that
// collide with the catalog are regenerated.
func (s *Store) Import(ctx context.Context, r io.Reader) ([]MathSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	incoming, err := validateSets(raw)
	if err != nil {
		return nil, err
	}
	for _, set := range incoming {
		if len(set.Cards) == 0 {
			return nil, fmt.Errorf("set %q: %w", set.Name, ErrEmptySet)
		}
		for _, c := range set.Cards {
			if err := checkCard(c); err != nil {
				return nil, fmt.Errorf("set %q: %w", set.Name, err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	setIDs := make(map[string]bool)
	cardIDs := make(map[string]bool)
	for _, set := range s.sets {
		setIDs[set.ID] = true
		for _, c := range set.Cards {
			cardIDs[c.ID] = true
		}
	}

	now := s.now().UTC()
	added := make([]MathSet, 0, len(incoming))
	for _, set := range incoming {
		if setIDs[set.ID] {
			set.ID = "set-" + shortuuid.New()
		}
		setIDs[set.ID] = true
		for j, c := range set.Cards {
			if cardIDs[c.ID] {
				set.Cards[j].ID = newCardID(set.Name)
			}
			cardIDs[set.Cards[j].ID] = true
		}
		if set.CreatedAt.IsZero() {
			set.CreatedAt = now
		}
		set.UpdatedAt = now
		s.sets = append(s.sets, set)
		added = append(added, set.clone())
	}
	s.persist(ctx)
	s.log.Info("imported sets", zap.Int("count", len(added)))
	return added, nil
}

// Export writes the given sets (all when ids is empty) as an indented JSON
// document that Import accepts.
func (s *Store) Export(w io.Writer, ids ...string) error {
	var out []MathSet
	if len(ids) == 0 {
		out = s.All()
	} else {
		for _, id := range ids {
			set, err := s.Get(id)
			if err != nil {
				return err
			}
			out = append(out, set)
		}
	}
	if out == nil {
		out = []MathSet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode sets: %w", err)
	}
	return nil
}

func (s *Store) index(id string) int {
	for i, set := range s.sets {
		if set.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the catalog. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	sets := s.sets
	if sets == nil {
		sets = []MathSet{}
	}
	if err := store.SetJSON(ctx, s.kv, store.KeyMathSets, sets); err != nil {
		s.log.Warn("save sets failed", zap.Error(err), zap.String("key", store.KeyMathSets))
	}
}

func uniqueProblems(problems []Problem) []Problem {
	seen := make(map[string]bool, len(problems))
	out := make([]Problem, 0, len(problems))
	for _, p := range problems {
		if seen[p.Question] {
			continue
		}
		seen[p.Question] = true
		out = append(out, p)
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func newCardID(setName string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(setName), "-"), "-")
	if slug == "" {
		slug = "card"
	}
	return slug + "-" + shortuuid.New()
}
