package training

import (
	"math/rand/v2"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// Learner is a simulated student with a hidden probability of answering each
// chapter/difficulty bucket correctly.
type Learner struct {
	skill []float64
	gain  float64
	rng   *rand.Rand
}

// NewLearner draws a learner whose skill falls with difficulty and varies
// per chapter. gain is how much of the remaining gap one practiced
// question closes.
func NewLearner(chapterCount int, gain float64, rng *rand.Rand) *Learner {
	skill := make([]float64, adaptive.StateSize(chapterCount))
	for ch := 1; ch <= chapterCount; ch++ {
		base := 0.3 + 0.6*rng.Float64()
		for i, d := range adaptive.Difficulties {
			p := base - 0.15*float64(i) + 0.1*(rng.Float64()-0.5)
			skill[adaptive.EncodeAction(ch, d)] = min(max(p, 0.05), 0.95)
		}
	}
	return &Learner{skill: skill, gain: gain, rng: rng}
}

// LearnerFromSummary builds a learner whose hidden skill matches an observed
// record. Untried buckets get a random skill.
func LearnerFromSummary(summary adaptive.PerformanceSummary, chapterCount int, gain float64, rng *rand.Rand) *Learner {
	l := NewLearner(chapterCount, gain, rng)
	for ch := 1; ch <= chapterCount; ch++ {
		for _, d := range adaptive.Difficulties {
			if b := summary.Bucket(ch, d); b.Total > 0 {
				l.skill[adaptive.EncodeAction(ch, d)] = min(max(b.Accuracy(), 0.05), 0.95)
			}
		}
	}
	return l
}

// Skill returns the hidden probability of a correct answer in a bucket.
func (l *Learner) Skill(a adaptive.Action) float64 {
	return l.skill[a]
}

// Answer simulates n questions in a bucket and returns how many were correct.
// Practice raises the bucket's skill.
func (l *Learner) Answer(a adaptive.Action, n int) int {
	correct := 0
	for i := 0; i < n; i++ {
		if l.rng.Float64() < l.skill[a] {
			correct++
		}
		l.skill[a] += l.gain * (1 - l.skill[a])
	}
	return correct
}

// Warmup answers a few questions in every bucket so the first state is not
// empty.
func (l *Learner) Warmup(chapterCount, maxPerBucket int) adaptive.PerformanceSummary {
	summary := adaptive.PerformanceSummary{}
	for ch := 1; ch <= chapterCount; ch++ {
		for _, d := range adaptive.Difficulties {
			n := l.rng.IntN(maxPerBucket + 1)
			if n == 0 {
				continue
			}
			a := adaptive.EncodeAction(ch, d)
			summary.Add(ch, d, l.Answer(a, n), n)
		}
	}
	return summary
}
