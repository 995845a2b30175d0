package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// LegacyUser receives the progress found in pre-profile installations.
const LegacyUser = "Default"

// legacyCard is a card as stored before progress moved to per-user records:
// structure and progress fields side by side.
type legacyCard struct {
	ID                 string          `json:"id"`
	Question           string          `json:"question"`
	Answer             int             `json:"answer"`
	Weight             *int            `json:"weight,omitempty"`
	ConsecutiveCorrect *int            `json:"consecutiveCorrect,omitempty"`
	LastDurationMs     *int            `json:"lastDurationMs,omitempty"`
	Stats              json.RawMessage `json:"stats,omitempty"`
}

func (c legacyCard) hasProgress() bool {
	return c.Weight != nil || len(c.Stats) > 0
}

type legacySet struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Cards     []legacyCard    `json:"cards"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

type structureCard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}

type structureSet struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Cards     []structureCard `json:"cards"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// migratedProgress mirrors the persisted per-user card progress document.
type migratedProgress struct {
	Weight             int             `json:"weight"`
	ConsecutiveCorrect int             `json:"consecutiveCorrect"`
	LastDurationMs     *int            `json:"lastDurationMs,omitempty"`
	Stats              json.RawMessage `json:"stats"`
	MasteredAtLevels   []string        `json:"masteredAtLevels"`
}

var zeroStats = json.RawMessage(`{"totalAttempts":0,"correctAttempts":0,"fastAttempts":0,"slowAttempts":0,"incorrectAttempts":0}`)

// MigrationResult reports what MigrateLegacy did.
type MigrationResult struct {
	Ran           bool // false when the marker was already present
	CardsMigrated int
	SetsRewritten int
}

// MigrateLegacy moves progress embedded in set cards into the LegacyUser's
// progress record and rewrites the sets as structure only. It runs once: the
// marker key is written on success and later calls return immediately. Fresh
// installs (no sets, or sets without progress) only get the marker.
func MigrateLegacy(ctx context.Context, kv KV) (MigrationResult, error) {
	var res MigrationResult

	if _, err := kv.Get(ctx, KeyMigration); err == nil {
		return res, nil
	} else if !errors.Is(err, ErrNotFound) {
		return res, fmt.Errorf("read migration marker: %w", err)
	}
	res.Ran = true

	var sets []legacySet
	err := GetJSON(ctx, kv, KeyMathSets, &sets)
	switch {
	case errors.Is(err, ErrNotFound):
		sets = nil
	case err != nil:
		return res, fmt.Errorf("read legacy sets: %w", err)
	}

	migrated := make(map[string]migratedProgress)
	legacy := false
	for _, set := range sets {
		for _, c := range set.Cards {
			if c.ID == "" || !c.hasProgress() {
				continue
			}
			legacy = true
			p := migratedProgress{
				Weight:           1,
				LastDurationMs:   c.LastDurationMs,
				Stats:            zeroStats,
				MasteredAtLevels: []string{},
			}
			if c.Weight != nil {
				p.Weight = *c.Weight
			}
			if c.ConsecutiveCorrect != nil {
				p.ConsecutiveCorrect = *c.ConsecutiveCorrect
			}
			if len(c.Stats) > 0 && string(c.Stats) != "null" {
				p.Stats = c.Stats
			}
			migrated[c.ID] = p
		}
	}

	if legacy {
		if len(migrated) > 0 {
			if err := mergeLegacyProgress(ctx, kv, migrated); err != nil {
				return res, err
			}
			res.CardsMigrated = len(migrated)
		}

		cleaned := make([]structureSet, 0, len(sets))
		for _, set := range sets {
			cards := make([]structureCard, 0, len(set.Cards))
			for _, c := range set.Cards {
				cards = append(cards, structureCard{ID: c.ID, Question: c.Question, Answer: c.Answer})
			}
			cleaned = append(cleaned, structureSet{
				ID:        set.ID,
				Name:      set.Name,
				Cards:     cards,
				CreatedAt: set.CreatedAt,
				UpdatedAt: set.UpdatedAt,
			})
		}
		if err := SetJSON(ctx, kv, KeyMathSets, cleaned); err != nil {
			return res, fmt.Errorf("rewrite sets: %w", err)
		}
		res.SetsRewritten = len(cleaned)
	}

	if err := kv.Set(ctx, KeyMigration, "true"); err != nil {
		return res, fmt.Errorf("write migration marker: %w", err)
	}
	return res, nil
}

// mergeLegacyProgress adds migrated entries to the legacy user's progress,
// keeping any entry that already exists there.
func mergeLegacyProgress(ctx context.Context, kv KV, migrated map[string]migratedProgress) error {
	key := ProgressKey(LegacyUser)
	existing := make(map[string]json.RawMessage)
	if err := GetJSON(ctx, kv, key, &existing); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read legacy user progress: %w", err)
	}
	for id, p := range migrated {
		if _, ok := existing[id]; ok {
			continue
		}
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode migrated progress %q: %w", id, err)
		}
		existing[id] = b
	}
	if err := SetJSON(ctx, kv, key, existing); err != nil {
		return fmt.Errorf("save migrated progress: %w", err)
	}
	return nil
}
