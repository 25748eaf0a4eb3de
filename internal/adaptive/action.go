package adaptive

import "fmt"

// Action is a chapter/difficulty recommendation encoded as
// (chapter-1)*3 + difficulty index.
type Action int

// DecodeAction maps an action to its chapter (1-based) and difficulty.
// a must be non-negative; check it with ValidateAction first when it comes
// from outside the agent. A negative action panics.
func DecodeAction(a Action) (int, Difficulty) {
	chapter := int(a)/DifficultyCount + 1
	return chapter, Difficulties[int(a)%DifficultyCount]
}

// EncodeAction is the inverse of DecodeAction.
func EncodeAction(chapter int, d Difficulty) Action {
	return Action((chapter-1)*DifficultyCount + d.Index())
}

// ValidateAction checks a is within [0, actionSize).
func ValidateAction(a Action, actionSize int) error {
	if a < 0 || int(a) >= actionSize {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidAction, a, actionSize)
	}
	return nil
}

// ValidateBucket checks chapter is within [1, chapterCount] and d is known.
func ValidateBucket(chapter int, d Difficulty, chapterCount int) error {
	if chapter < 1 || chapter > chapterCount {
		return fmt.Errorf("%w: chapter %d not in [1,%d]", ErrInvalidBucket, chapter, chapterCount)
	}
	if !d.Valid() {
		return fmt.Errorf("%w: difficulty %q", ErrInvalidBucket, d)
	}
	return nil
}

func (a Action) String() string {
	if a < 0 {
		return fmt.Sprintf("action(%d)", int(a))
	}
	ch, d := DecodeAction(a)
	return fmt.Sprintf("chapter %d (%s)", ch, d)
}
