package adaptive

import "fmt"

// Config fixes the encoder/agent contract and the learning hyperparameters.
// It is immutable once an Agent has been built from it.
type Config struct {
	// ChapterCount is the number of chapters the encoder covers.
	ChapterCount int

	// StateSize and ActionSize must both equal ChapterCount*3.
	StateSize  int
	ActionSize int

	// HiddenSizes lists the widths of the approximator's hidden layers.
	HiddenSizes []int

	Gamma        float64 // discount for bootstrapped targets
	EpsilonStart float64 // initial exploration rate
	EpsilonDecay float64 // multiplicative decay applied after each replay batch
	EpsilonMin   float64 // exploration floor
	LearningRate float64 // Adam step size

	BufferCapacity int // experience buffer size
	BatchSize      int // default replay batch

	// WeightsPath, when set, is loaded best-effort at construction.
	WeightsPath string
}

// DefaultChapterCount is the number of chapters in the question bank.
const DefaultChapterCount = 6

// DefaultConfig returns the 6-chapter, 3-tier configuration.
func DefaultConfig() Config {
	n := StateSize(DefaultChapterCount)
	return Config{
		ChapterCount:   DefaultChapterCount,
		StateSize:      n,
		ActionSize:     n,
		HiddenSizes:    []int{64, 64},
		Gamma:          0.95,
		EpsilonStart:   1.0,
		EpsilonDecay:   0.995,
		EpsilonMin:     0.01,
		LearningRate:   0.001,
		BufferCapacity: 1000,
		BatchSize:      32,
	}
}

// Shape returns the approximator shape implied by the config.
func (c Config) Shape() Shape {
	hidden := make([]int, len(c.HiddenSizes))
	copy(hidden, c.HiddenSizes)
	return Shape{Input: c.StateSize, Hidden: hidden, Output: c.ActionSize}
}

// Validate fails fast on a broken encoder/agent contract or nonsense
// hyperparameters.
func (c Config) Validate() error {
	if c.ChapterCount <= 0 {
		return fmt.Errorf("%w: chapter count %d", ErrShapeMismatch, c.ChapterCount)
	}
	want := StateSize(c.ChapterCount)
	if c.StateSize != want {
		return fmt.Errorf("%w: state size %d, encoder produces %d", ErrShapeMismatch, c.StateSize, want)
	}
	if c.ActionSize != want {
		return fmt.Errorf("%w: action size %d, codec produces %d", ErrShapeMismatch, c.ActionSize, want)
	}
	for i, h := range c.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("hidden layer %d has width %d", i, h)
		}
	}
	if c.BufferCapacity <= 0 {
		return fmt.Errorf("buffer capacity must be positive, got %d", c.BufferCapacity)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > 1 || c.EpsilonStart < 0 || c.EpsilonStart > 1 {
		return fmt.Errorf("epsilon bounds out of [0,1]: start=%g min=%g", c.EpsilonStart, c.EpsilonMin)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0,1], got %g", c.EpsilonDecay)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	return nil
}
