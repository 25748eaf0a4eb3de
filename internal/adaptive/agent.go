package adaptive

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
)

// Agent picks chapter/difficulty actions epsilon-greedily over an
// Approximator's scores and learns from replayed transitions.
//
// An Agent is NOT safe for concurrent use. The caller must serialize access.
type Agent struct {
	cfg     Config
	model   Approximator
	buffer  *ReplayBuffer
	epsilon float64
	rng     *rand.Rand
	logger  *log.Logger
}

// Option customises an Agent at construction.
type Option func(*Agent)

// WithRand sets the random source used for exploration, sampling and
// parameter initialisation.
func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) { a.rng = rng }
}

// WithLogger sets the logger used for cold-start notices.
func WithLogger(l *log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithApproximator replaces the default network. Its shape must match the
// config's state and action sizes.
func WithApproximator(m Approximator) Option {
	return func(a *Agent) { a.model = m }
}

// NewAgent validates cfg, builds the approximator and, when cfg.WeightsPath is
// set, loads it best-effort. A missing weights file is logged and ignored; a
// weights file of another shape is an error.
func NewAgent(cfg Config, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		cfg:     cfg,
		buffer:  NewReplayBuffer(cfg.BufferCapacity),
		epsilon: cfg.EpsilonStart,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if a.logger == nil {
		a.logger = log.New(os.Stderr, "adaptive: ", log.LstdFlags)
	}

	if a.model == nil {
		a.model = NewNetwork(cfg.Shape(), cfg.LearningRate, a.rng)
	}
	shape := a.model.Shape()
	if shape.Input != cfg.StateSize || shape.Output != cfg.ActionSize {
		return nil, fmt.Errorf("%w: approximator is %d->%d, config is %d->%d",
			ErrShapeMismatch, shape.Input, shape.Output, cfg.StateSize, cfg.ActionSize)
	}

	if cfg.WeightsPath != "" {
		if err := a.Load(cfg.WeightsPath); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Config returns the construction config.
func (a *Agent) Config() Config { return a.cfg }

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 { return a.epsilon }

// SetEpsilon overrides the exploration rate, clamped to [0,1].
func (a *Agent) SetEpsilon(eps float64) { a.epsilon = clamp01(eps) }

// Buffer exposes the experience buffer for inspection.
func (a *Agent) Buffer() *ReplayBuffer { return a.buffer }

// Values returns the approximator's score for every action.
func (a *Agent) Values(state []float64) ([]float64, error) {
	if len(state) != a.cfg.StateSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateSize, len(state), a.cfg.StateSize)
	}
	return a.model.Predict(state)
}

// Act returns a uniformly random action with probability epsilon, otherwise
// the highest-scoring action (lowest index on ties). It never changes epsilon.
func (a *Agent) Act(state []float64) (Action, error) {
	if len(state) != a.cfg.StateSize {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrStateSize, len(state), a.cfg.StateSize)
	}
	if a.rng.Float64() < a.epsilon {
		return Action(a.rng.IntN(a.cfg.ActionSize)), nil
	}
	scores, err := a.model.Predict(state)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return argmax(scores), nil
}

// Remember stores a transition. Pass a nil nextState for a terminal step.
func (a *Agent) Remember(state []float64, action Action, reward float64, nextState []float64) {
	t := Transition{
		State:  append([]float64(nil), state...),
		Action: action,
		Reward: reward,
	}
	if nextState != nil {
		t.NextState = append([]float64(nil), nextState...)
	}
	a.buffer.Push(t)
}

// Replay trains on batchSize transitions sampled without replacement and then
// decays epsilon toward its floor. With fewer stored transitions than
// batchSize it does nothing and reports false. A non-positive batchSize uses
// the configured default.
func (a *Agent) Replay(batchSize int) (bool, error) {
	if batchSize <= 0 {
		batchSize = a.cfg.BatchSize
	}
	if a.buffer.Len() < batchSize {
		return false, nil
	}

	for _, t := range a.buffer.Sample(batchSize, a.rng) {
		target := t.Reward
		if t.NextState != nil {
			next, err := a.model.Predict(t.NextState)
			if err != nil {
				return false, fmt.Errorf("predict next state: %w", err)
			}
			target += a.cfg.Gamma * maxOf(next)
		}
		if err := a.model.Update(t.State, t.Action, target); err != nil {
			return false, fmt.Errorf("update: %w", err)
		}
	}

	if a.epsilon > a.cfg.EpsilonMin {
		a.epsilon = max(a.epsilon*a.cfg.EpsilonDecay, a.cfg.EpsilonMin)
	}
	return true, nil
}

// ComputeReward scores an action against the learner's record: +1 for
// recommending a bucket with accuracy below 0.5 (including untried buckets),
// -1 otherwise. action must be valid for the agent's config.
func (a *Agent) ComputeReward(summary PerformanceSummary, action Action) float64 {
	return Reward(summary, action)
}

// Reward is the reward rule used by Agent.ComputeReward.
func Reward(summary PerformanceSummary, action Action) float64 {
	chapter, d := DecodeAction(action)
	b := summary.Bucket(chapter, d)
	total := b.Total
	if total == 0 {
		total = 1
	}
	if float64(b.Correct)/float64(total) < 0.5 {
		return 1
	}
	return -1
}

// Save writes the approximator's parameters to path. Epsilon and the buffer
// are not persisted.
func (a *Agent) Save(path string) error {
	return SaveWeights(path, a.model)
}

// Load restores parameters from path. A missing file is logged and leaves the
// current parameters in place.
func (a *Agent) Load(path string) error {
	ok, err := LoadWeights(path, a.model)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Printf("no policy weights at %s, starting fresh", path)
	}
	return nil
}
