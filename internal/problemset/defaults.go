package problemset

import (
	"fmt"
	"time"
)

// DefaultSets returns the multiplication tables a fresh catalog starts with.
func DefaultSets(now time.Time) []MathSet {
	tables := []int{3, 4, 8}
	sets := make([]MathSet, 0, len(tables))
	for _, n := range tables {
		cards := make([]SetCard, 0, 10)
		for i := 1; i <= 10; i++ {
			cards = append(cards, SetCard{
				ID:       fmt.Sprintf("%dx%d", n, i),
				Question: fmt.Sprintf("%d x %d", n, i),
				Answer:   n * i,
			})
		}
		sets = append(sets, MathSet{
			ID:        fmt.Sprintf("mult-%ds", n),
			Name:      fmt.Sprintf("Multiplication %ds", n),
			Cards:     cards,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return sets
}
