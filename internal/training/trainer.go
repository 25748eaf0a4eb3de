package training

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// Config controls an offline training run.
type Config struct {
	Episodes         int     // simulated learners
	Steps            int     // quiz decisions per learner
	QuestionsPerStep int     // questions answered after each decision
	WarmupPerBucket  int     // max questions per bucket before the first decision
	BatchSize        int     // replay batch, 0 uses the agent's default
	LearningGain     float64 // skill gained per practiced question
	Seed             uint64  // simulation seed
}

// DefaultConfig returns a run long enough to move epsilon to its floor.
func DefaultConfig() Config {
	return Config{
		Episodes:         300,
		Steps:            10,
		QuestionsPerStep: 5,
		WarmupPerBucket:  4,
		LearningGain:     0.05,
		Seed:             1,
	}
}

// Report summarises a finished run.
type Report struct {
	RunID       string        `json:"runId"`
	Episodes    int           `json:"episodes"`
	Transitions int           `json:"transitions"`
	Replays     int           `json:"replays"`
	Epsilon     float64       `json:"epsilon"`
	MeanReward  float64       `json:"meanReward"`
	Duration    time.Duration `json:"duration"`
}

// Trainer teaches an agent by letting it pick buckets for simulated learners.
type Trainer struct {
	agent *adaptive.Agent
	cfg   Config
	rng   *rand.Rand

	// Seeds are real learner records; when present each episode starts from
	// one of them instead of a random warmup.
	Seeds []adaptive.PerformanceSummary

	// OnEpisode, if set, is called after each episode with its mean reward.
	OnEpisode func(episode int, meanReward float64)
}

// NewTrainer creates a Trainer for agent.
func NewTrainer(agent *adaptive.Agent, cfg Config) *Trainer {
	return &Trainer{
		agent: agent,
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Run plays every episode: act, reward, simulate the quiz, remember the
// transition, replay. The last step of an episode is terminal.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	if t.cfg.Episodes <= 0 || t.cfg.Steps <= 0 || t.cfg.QuestionsPerStep <= 0 {
		return nil, fmt.Errorf("training config needs positive episodes, steps and questions per step")
	}

	start := time.Now()
	chapterCount := t.agent.Config().ChapterCount
	report := &Report{RunID: uuid.NewString()}
	var rewardSum float64

	for ep := 0; ep < t.cfg.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		learner, summary := t.newEpisode(chapterCount)
		state := adaptive.Encode(summary, chapterCount)
		var epReward float64

		for step := 0; step < t.cfg.Steps; step++ {
			action, err := t.agent.Act(state)
			if err != nil {
				return nil, fmt.Errorf("episode %d step %d: %w", ep, step, err)
			}
			reward := t.agent.ComputeReward(summary, action)

			ch, d := adaptive.DecodeAction(action)
			correct := learner.Answer(action, t.cfg.QuestionsPerStep)
			summary.Add(ch, d, correct, t.cfg.QuestionsPerStep)

			var next []float64
			if step < t.cfg.Steps-1 {
				next = adaptive.Encode(summary, chapterCount)
			}
			t.agent.Remember(state, action, reward, next)

			trained, err := t.agent.Replay(t.cfg.BatchSize)
			if err != nil {
				return nil, fmt.Errorf("episode %d replay: %w", ep, err)
			}
			if trained {
				report.Replays++
			}

			report.Transitions++
			epReward += reward
			if next != nil {
				state = next
			}
		}

		rewardSum += epReward
		report.Episodes++
		if t.OnEpisode != nil {
			t.OnEpisode(ep+1, epReward/float64(t.cfg.Steps))
		}
	}

	report.Epsilon = t.agent.Epsilon()
	report.MeanReward = rewardSum / float64(report.Transitions)
	report.Duration = time.Since(start)
	return report, nil
}

func (t *Trainer) newEpisode(chapterCount int) (*Learner, adaptive.PerformanceSummary) {
	if len(t.Seeds) > 0 {
		seed := t.Seeds[t.rng.IntN(len(t.Seeds))]
		return LearnerFromSummary(seed, chapterCount, t.cfg.LearningGain, t.rng), seed.Clone()
	}
	l := NewLearner(chapterCount, t.cfg.LearningGain, t.rng)
	return l, l.Warmup(chapterCount, t.cfg.WarmupPerBucket)
}
