// Package history keeps a per-user log of finished practice sessions.
package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/session"
	"github.com/abhisek/flashmath/internal/store"
)

// MaxRecords is how many sessions are kept per user; older ones are dropped.
const MaxRecords = 50

// Record summarizes one finished session.
type Record struct {
	SessionID        string        `json:"sessionId"`
	SetID            string        `json:"setId"`
	SetName          string        `json:"setName"`
	Mode             session.Mode  `json:"mode"`
	Level            mastery.Level `json:"level"`
	StartedAt        time.Time     `json:"startedAt"`
	DurationSecs     int           `json:"durationSecs"`
	Questions        int           `json:"questions"`
	Correct          int           `json:"correct"`
	Fast             int           `json:"fast"`
	Slow             int           `json:"slow"`
	Incorrect        int           `json:"incorrect"`
	AverageTimeMs    float64       `json:"averageTimeMs"`
	MasteredSetLevel mastery.Level `json:"masteredSetLevel,omitempty"`
}

// Accuracy is the share of correct answers, 0 when nothing was answered.
func (r Record) Accuracy() float64 {
	if r.Questions == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Questions)
}

// FromStats builds the record of a finished session.
func FromStats(s *session.Stats, setName string, mastered *mastery.StateTransition) Record {
	r := Record{
		SessionID:     s.ID,
		SetID:         s.SetID,
		SetName:       setName,
		Mode:          s.Mode,
		Level:         s.Level,
		StartedAt:     s.StartTime.UTC(),
		Questions:     s.TotalQuestions,
		Correct:       s.CorrectAnswers,
		Fast:          s.FastAnswers,
		Slow:          s.SlowAnswers,
		Incorrect:     s.IncorrectAnswers,
		AverageTimeMs: s.AverageTimeMs,
	}
	if s.Finished() {
		r.DurationSecs = int(s.EndTime.Sub(s.StartTime).Seconds())
	}
	if mastered != nil {
		r.MasteredSetLevel = mastered.Level
	}
	return r
}

// Log stores session records per user. Storage failures are logged and
// otherwise ignored, like every other store.
type Log struct {
	kv  store.KV
	log *zap.Logger
	mu  sync.Mutex
}

// New creates a history log over kv.
func New(kv store.KV, log *zap.Logger) *Log {
	log = logger.OrNop(log)
	return &Log{kv: kv, log: log}
}

// Append adds rec to user's history, dropping the oldest records beyond
// MaxRecords.
func (l *Log) Append(ctx context.Context, user string, rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs := l.load(ctx, user)
	recs = append(recs, rec)
	if len(recs) > MaxRecords {
		recs = recs[len(recs)-MaxRecords:]
	}
	if err := store.SetJSON(ctx, l.kv, store.HistoryKey(user), recs); err != nil {
		l.log.Warn("save history failed", zap.Error(err), zap.String("user", user))
	}
}

// List returns up to limit records of user, newest first. A limit of zero or
// less returns all of them.
func (l *Log) List(ctx context.Context, user string, limit int) []Record {
	l.mu.Lock()
	recs := l.load(ctx, user)
	l.mu.Unlock()

	out := make([]Record, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, recs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Delete removes user's history.
func (l *Log) Delete(ctx context.Context, user string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Delete(ctx, store.HistoryKey(user)); err != nil {
		l.log.Warn("delete history failed", zap.Error(err), zap.String("user", user))
	}
}

func (l *Log) load(ctx context.Context, user string) []Record {
	var recs []Record
	err := store.GetJSON(ctx, l.kv, store.HistoryKey(user), &recs)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		l.log.Warn("load history failed", zap.Error(err), zap.String("user", user))
		return nil
	}
	return recs
}
