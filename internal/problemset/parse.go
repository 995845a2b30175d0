package problemset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprRe = regexp.MustCompile(`(?i)^(\d+)\s*[x*]\s*(\d+)$`)

// ParseExpression parses a multiplication such as "3x5", "3 x 5", "3*5" or
// "3 X 5" into its canonical question ("3 x 5") and answer.
func ParseExpression(s string) (Problem, error) {
	m := exprRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Problem{}, fmt.Errorf("%w: %q (use 3x5, 4 x 6 or 8*7)", ErrInvalidExpression, s)
	}
	a, errA := strconv.Atoi(m[1])
	b, errB := strconv.Atoi(m[2])
	if errA != nil || errB != nil {
		return Problem{}, fmt.Errorf("%w: %q: operand out of range", ErrInvalidExpression, s)
	}
	return Problem{
		Question: fmt.Sprintf("%d x %d", a, b),
		Answer:   a * b,
	}, nil
}

// ParseProblems parses one expression per entry. Blank entries are skipped.
// Duplicates (by canonical question) and malformed entries are errors, and at
// least one problem is required.
func ParseProblems(lines []string) ([]Problem, error) {
	var out []Problem
	seen := make(map[string]int)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := ParseExpression(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if prev, ok := seen[p.Question]; ok {
			return nil, fmt.Errorf("line %d: %w: %q already on line %d", i+1, ErrDuplicateProblem, p.Question, prev)
		}
		seen[p.Question] = i + 1
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrEmptySet
	}
	return out, nil
}

// SplitProblems splits free text on newlines and commas.
func SplitProblems(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})
}

// checkCard verifies that a card's answer matches its question.
func checkCard(c SetCard) error {
	p, err := ParseExpression(c.Question)
	if err != nil {
		return err
	}
	if p.Answer != c.Answer {
		return fmt.Errorf("%w: %q answer %d, want %d", ErrInvalidExpression, c.Question, c.Answer, p.Answer)
	}
	return nil
}
