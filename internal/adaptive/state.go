package adaptive

// Bucket holds the answer counts for one chapter/difficulty cell.
type Bucket struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns Correct/Total, or 0 when nothing has been attempted.
func (b Bucket) Accuracy() float64 {
	if b.Total <= 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Total)
}

// PerformanceSummary maps chapter id -> difficulty -> counts. Missing chapters
// or tiers are zero buckets.
type PerformanceSummary map[int]map[Difficulty]Bucket

// Bucket returns the counts for a cell, zero if absent.
func (p PerformanceSummary) Bucket(chapter int, d Difficulty) Bucket {
	if p == nil {
		return Bucket{}
	}
	return p[chapter][d]
}

// Add accumulates counts into a cell, creating it as needed.
func (p PerformanceSummary) Add(chapter int, d Difficulty, correct, total int) {
	row, ok := p[chapter]
	if !ok {
		row = make(map[Difficulty]Bucket, DifficultyCount)
		p[chapter] = row
	}
	b := row[d]
	b.Correct += correct
	b.Total += total
	row[d] = b
}

// Merge adds every cell of other into p.
func (p PerformanceSummary) Merge(other PerformanceSummary) {
	for ch, row := range other {
		for d, b := range row {
			p.Add(ch, d, b.Correct, b.Total)
		}
	}
}

// Clone returns a deep copy.
func (p PerformanceSummary) Clone() PerformanceSummary {
	out := make(PerformanceSummary, len(p))
	out.Merge(p)
	return out
}

// StateSize returns the encoded vector length for chapterCount chapters.
func StateSize(chapterCount int) int {
	return chapterCount * DifficultyCount
}

// Encode converts a summary into the fixed-length feature vector
// [ch1 easy, ch1 medium, ch1 hard, ch2 easy, ...] of per-bucket accuracies.
// Ratios are clamped to [0,1] so malformed counts cannot leave the range.
// A non-positive chapterCount yields an empty vector.
func Encode(summary PerformanceSummary, chapterCount int) []float64 {
	state := make([]float64, 0, StateSize(max(chapterCount, 0)))
	for ch := 1; ch <= chapterCount; ch++ {
		for _, d := range Difficulties {
			state = append(state, clamp01(summary.Bucket(ch, d).Accuracy()))
		}
	}
	return state
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
