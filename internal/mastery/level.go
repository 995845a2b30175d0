package mastery

import (
	"fmt"
	"time"
)

// Level is a mastery difficulty tier. Levels are totally ordered and
// unlocked strictly in sequence.
type Level string

const (
	Level1 Level = "level1"
	Level2 Level = "level2"
	Level3 Level = "level3"
	Ninja  Level = "ninja"
)

// Levels lists every level in ascending order.
var Levels = []Level{Level1, Level2, Level3, Ninja}

var levelInfo = map[Level]struct {
	name      string
	threshold time.Duration
}{
	Level1: {"Level 1", 10 * time.Second},
	Level2: {"Level 2", 6 * time.Second},
	Level3: {"Level 3", 3 * time.Second},
	Ninja:  {"Ninja", 1500 * time.Millisecond},
}

// ParseLevel converts an identifier such as "level2" or "ninja" into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	_, ok := levelInfo[l]
	return ok
}

// Rank returns the 1-based position of l in Levels, or 0 for an unknown level.
func (l Level) Rank() int {
	for i, lv := range Levels {
		if lv == l {
			return i + 1
		}
	}
	return 0
}

// Next returns the level after l. The second value is false for Ninja.
func (l Level) Next() (Level, bool) {
	r := l.Rank()
	if r == 0 || r == len(Levels) {
		return "", false
	}
	return Levels[r], true
}

// Prev returns the level before l. The second value is false for Level1.
func (l Level) Prev() (Level, bool) {
	r := l.Rank()
	if r <= 1 {
		return "", false
	}
	return Levels[r-2], true
}

// Name returns the display name.
func (l Level) Name() string {
	if info, ok := levelInfo[l]; ok {
		return info.name
	}
	return string(l)
}

// SpeedThreshold is the nominal time budget of the level. Answer
// classification uses the user's threshold setting; this value is shown to
// the user as a target.
func (l Level) SpeedThreshold() time.Duration {
	return levelInfo[l].threshold
}

// AtLeast reports whether l ranks at or above other.
func (l Level) AtLeast(other Level) bool {
	return l.Rank() >= other.Rank() && l.Rank() > 0
}

func (l Level) String() string { return string(l) }
