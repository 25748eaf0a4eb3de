package adaptive

import (
	"encoding"
	"slices"
)

// Approximator maps a state vector to one score per action and can be nudged
// toward a target value for a single action. Any model that satisfies this
// (linear, lookup table, small network) can back an Agent.
type Approximator interface {
	// Predict returns ActionSize scores for state.
	Predict(state []float64) ([]float64, error)

	// Update takes one gradient step moving the score of action toward target.
	// Other actions' scores contribute zero error.
	Update(state []float64, action Action, target float64) error

	// Shape reports the input and output sizes.
	Shape() Shape

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Shape describes a feed-forward approximator layout.
type Shape struct {
	Input  int
	Hidden []int
	Output int
}

// Equal reports whether two shapes are identical.
func (s Shape) Equal(o Shape) bool {
	return s.Input == o.Input && s.Output == o.Output && slices.Equal(s.Hidden, o.Hidden)
}

// sizes returns the layer widths from input to output.
func (s Shape) sizes() []int {
	out := make([]int, 0, len(s.Hidden)+2)
	out = append(out, s.Input)
	out = append(out, s.Hidden...)
	return append(out, s.Output)
}

// argmax returns the index of the largest score; ties go to the lowest index.
func argmax(scores []float64) Action {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return Action(best)
}

func maxOf(scores []float64) float64 {
	return scores[argmax(scores)]
}
