package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
)

// Mode selects how a session ends.
type Mode string

const (
	// ModeMaster runs until the set is mastered at the session level or the
	// user leaves.
	ModeMaster Mode = "master"
	// ModeTimed runs for a fixed duration.
	ModeTimed Mode = "timed"
)

// ParseMode converts "master" or "timed" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeMaster, ModeTimed:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (master or timed)", s)
}

// TimedDurations are the durations a timed session may run for.
var TimedDurations = []time.Duration{30 * time.Second, 60 * time.Second, 90 * time.Second}

// DefaultTimedDuration is used when a timed session names none.
const DefaultTimedDuration = 60 * time.Second

// ParseDuration accepts "30", "60", "90" (seconds) or a Go duration such as
// "90s" that equals one of TimedDurations.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(n) * time.Second
	}
	for _, allowed := range TimedDurations {
		if d == allowed {
			return d, nil
		}
	}
	return 0, fmt.Errorf("duration %s not supported (30s, 60s or 90s)", d)
}

// Stats aggregates one practice session. It lives only as long as the
// session and its summary.
type Stats struct {
	ID            string
	SetID         string
	StartTime     time.Time
	EndTime       *time.Time
	Mode          Mode
	Level         mastery.Level
	TimedDuration time.Duration // zero in master mode

	TotalQuestions   int
	CorrectAnswers   int
	FastAnswers      int
	SlowAnswers      int
	IncorrectAnswers int
	AverageTimeMs    float64
}

// New starts the statistics of a session.
func New(setID string, mode Mode, level mastery.Level, duration time.Duration, now time.Time) *Stats {
	s := &Stats{
		ID:        uuid.New().String(),
		SetID:     setID,
		StartTime: now,
		Mode:      mode,
		Level:     level,
	}
	if mode == ModeTimed {
		if duration <= 0 {
			duration = DefaultTimedDuration
		}
		s.TimedDuration = duration
	}
	return s
}

// Record adds one answer to the aggregates. The average latency is kept as
// a running mean.
func (s *Stats) Record(r engine.AnswerResult, elapsedMs int) {
	prev := float64(s.TotalQuestions)
	s.TotalQuestions++
	switch {
	case !r.IsCorrect:
		s.IncorrectAnswers++
	case r.IsFast:
		s.CorrectAnswers++
		s.FastAnswers++
	default:
		s.CorrectAnswers++
		s.SlowAnswers++
	}
	s.AverageTimeMs = (s.AverageTimeMs*prev + float64(elapsedMs)) / float64(s.TotalQuestions)
}

// Finish sets the end time. Later calls keep the first end time.
func (s *Stats) Finish(now time.Time) {
	if s.EndTime == nil {
		s.EndTime = &now
	}
}

// Finished reports whether Finish was called.
func (s *Stats) Finished() bool { return s.EndTime != nil }

// Accuracy is the share of correct answers in [0,1].
func (s *Stats) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions)
}

// Elapsed is the session length so far, or in total once finished.
func (s *Stats) Elapsed(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// Remaining is the time left in a timed session, never negative. It is zero
// in master mode.
func (s *Stats) Remaining(now time.Time) time.Duration {
	if s.Mode != ModeTimed {
		return 0
	}
	return max(0, s.TimedDuration-s.Elapsed(now))
}
