package settings

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/store"
)

const (
	DefaultSpeedThresholdMs = 3000
	MinSpeedThresholdMs     = 1000
	MaxSpeedThresholdMs     = 10000
)

// Settings are a user's practice preferences.
type Settings struct {
	SpeedThresholdMs int `json:"speedThresholdMs"`
}

// Default returns the settings of a user who never saved any.
func Default() Settings {
	return Settings{SpeedThresholdMs: DefaultSpeedThresholdMs}
}

// ClampThreshold bounds a threshold to [MinSpeedThresholdMs, MaxSpeedThresholdMs].
// NaN maps to the default.
func ClampThreshold(ms float64) int {
	if math.IsNaN(ms) {
		return DefaultSpeedThresholdMs
	}
	ms = math.Max(MinSpeedThresholdMs, math.Min(MaxSpeedThresholdMs, ms))
	return int(math.Round(ms))
}

// Store persists settings per user.
type Store struct {
	kv  store.KV
	log *zap.Logger
}

// New creates a settings store over kv.
func New(kv store.KV, log *zap.Logger) *Store {
	log = logger.OrNop(log)
	return &Store{kv: kv, log: log}
}

// Load returns the user's settings, clamped. Missing or malformed values
// yield the defaults.
func (s *Store) Load(ctx context.Context, user string) Settings {
	var raw struct {
		SpeedThresholdMs *float64 `json:"speedThresholdMs"`
	}
	key := store.SettingsKey(user)
	if err := store.GetJSON(ctx, s.kv, key, &raw); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("load settings failed", zap.Error(err), zap.String("user", user))
		}
		return Default()
	}
	if raw.SpeedThresholdMs == nil {
		return Default()
	}
	return Settings{SpeedThresholdMs: ClampThreshold(*raw.SpeedThresholdMs)}
}

// Save clamps and stores the user's settings and returns what was stored.
// A failed write is logged; the clamped value is still returned.
func (s *Store) Save(ctx context.Context, user string, in Settings) Settings {
	out := Settings{SpeedThresholdMs: ClampThreshold(float64(in.SpeedThresholdMs))}
	if err := store.SetJSON(ctx, s.kv, store.SettingsKey(user), out); err != nil {
		s.log.Warn("save settings failed", zap.Error(err), zap.String("user", user))
	}
	return out
}

// Delete removes the user's settings.
func (s *Store) Delete(ctx context.Context, user string) {
	if err := s.kv.Delete(ctx, store.SettingsKey(user)); err != nil {
		s.log.Warn("delete settings failed", zap.Error(err), zap.String("user", user))
	}
}
