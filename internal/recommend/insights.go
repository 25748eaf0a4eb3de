package recommend

import (
	"fmt"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// Weakness classifies a chapter from its per-tier accuracy.
type Weakness string

const (
	WeakAll    Weakness = "All Levels Weak"
	WeakHard   Weakness = "Hard"
	WeakMedium Weakness = "Medium"
	WeakEasy   Weakness = "Easy"
	Strong     Weakness = "Strong"
)

// Per-tier accuracy below which a tier counts as weak.
const (
	easyThreshold   = 0.70
	mediumThreshold = 0.60
	hardThreshold   = 0.50
)

// ChapterStat is one chapter's aggregate record.
type ChapterStat struct {
	Chapter  quiz.Chapter                            `json:"chapter"`
	Buckets  map[adaptive.Difficulty]adaptive.Bucket `json:"buckets"`
	Weakness Weakness                                `json:"weakness"`
}

// Insights summarises a learner's record for display.
type Insights struct {
	Chapters        []ChapterStat `json:"chapters"`
	OverallScore    float64       `json:"overallScore"`
	Recommendations []string      `json:"recommendations"`
}

// Classify flags the weakest tier of a chapter. Untried tiers count as 0%.
func Classify(easy, medium, hard adaptive.Bucket) Weakness {
	e, m, h := easy.Accuracy(), medium.Accuracy(), hard.Accuracy()
	switch {
	case e < easyThreshold && m < mediumThreshold && h < hardThreshold:
		return WeakAll
	case h < hardThreshold:
		return WeakHard
	case m < mediumThreshold:
		return WeakMedium
	case e < easyThreshold:
		return WeakEasy
	default:
		return Strong
	}
}

// BuildInsights classifies every chapter the learner has attempted.
// Chapters without any answers are left out.
func BuildInsights(chapters []quiz.Chapter, summary adaptive.PerformanceSummary) *Insights {
	ins := &Insights{}
	var correct, total int
	for _, ch := range chapters {
		row, ok := summary[ch.ID]
		if !ok {
			continue
		}
		buckets := make(map[adaptive.Difficulty]adaptive.Bucket, adaptive.DifficultyCount)
		attempted := 0
		for _, d := range adaptive.Difficulties {
			b := row[d]
			buckets[d] = b
			attempted += b.Total
			correct += b.Correct
			total += b.Total
		}
		if attempted == 0 {
			continue
		}

		w := Classify(buckets[adaptive.Easy], buckets[adaptive.Medium], buckets[adaptive.Hard])
		ins.Chapters = append(ins.Chapters, ChapterStat{Chapter: ch, Buckets: buckets, Weakness: w})
		if w != Strong {
			ins.Recommendations = append(ins.Recommendations, fmt.Sprintf("%s (%s)", ch.Name, w))
		}
	}
	if total > 0 {
		ins.OverallScore = float64(correct) / float64(total)
	}
	return ins
}
