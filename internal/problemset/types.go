package problemset

import (
	"errors"
	"time"
)

var (
	ErrSetNotFound        = errors.New("set not found")
	ErrInvalidExpression  = errors.New("invalid expression")
	ErrDuplicateProblem   = errors.New("duplicate problem")
	ErrEmptySet           = errors.New("set has no problems")
	ErrEmptyName          = errors.New("set name is required")
	ErrInvalidSetDocument = errors.New("invalid set document")
)

// SetCard is one question of a set. It carries structure only; progress is
// kept per user elsewhere.
type SetCard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}

// MathSet is a named, ordered collection of cards shared by all users.
type MathSet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cards     []SetCard `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardIDs returns the IDs of the set's cards in order.
func (s MathSet) CardIDs() []string {
	ids := make([]string, len(s.Cards))
	for i, c := range s.Cards {
		ids[i] = c.ID
	}
	return ids
}

// Card returns the card with the given ID.
func (s MathSet) Card(id string) (SetCard, bool) {
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return SetCard{}, false
}

// Problem is a parsed question with its answer.
type Problem struct {
	Question string
	Answer   int
}

func (s MathSet) clone() MathSet {
	s.Cards = append([]SetCard(nil), s.Cards...)
	return s
}
