package adaptive

import (
	"fmt"
	"strings"
)

// Difficulty is a question difficulty tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the tiers in state-vector order. The order is load-bearing:
// state features and actions are indexed positionally by it.
var Difficulties = [...]Difficulty{Easy, Medium, Hard}

// DifficultyCount is the number of tiers per chapter.
const DifficultyCount = len(Difficulties)

// Index returns the tier's position in Difficulties, or -1 if unknown.
func (d Difficulty) Index() int {
	switch d {
	case Easy:
		return 0
	case Medium:
		return 1
	case Hard:
		return 2
	}
	return -1
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	return d.Index() >= 0
}

// ParseDifficulty parses a tier name, ignoring case and surrounding space.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: difficulty %q", ErrInvalidBucket, s)
	}
	return d, nil
}
