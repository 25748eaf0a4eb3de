package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_EmptySummary(t *testing.T) {
	state := Encode(nil, DefaultChapterCount)
	require.Len(t, state, 18)
	for i, v := range state {
		assert.Zerof(t, v, "index %d", i)
	}
}

func TestEncode_NonPositiveChapterCount(t *testing.T) {
	summary := PerformanceSummary{}
	summary.Add(1, Easy, 1, 2)
	assert.Empty(t, Encode(summary, 0))
	assert.Empty(t, Encode(summary, -3))
}

func TestEncode_SingleBucket(t *testing.T) {
	summary := PerformanceSummary{}
	summary.Add(1, Easy, 3, 6)

	state := Encode(summary, DefaultChapterCount)
	require.Len(t, state, 18)
	assert.Equal(t, 0.5, state[0])
	for i := 1; i < len(state); i++ {
		assert.Zerof(t, state[i], "index %d", i)
	}
}

func TestEncode_Ordering(t *testing.T) {
	summary := PerformanceSummary{
		2: {Hard: {Correct: 1, Total: 4}},
		6: {Medium: {Correct: 2, Total: 2}},
	}
	state := Encode(summary, DefaultChapterCount)

	assert.Equal(t, 0.25, state[EncodeAction(2, Hard)])
	assert.Equal(t, 1.0, state[EncodeAction(6, Medium)])
	assert.Equal(t, 0.25, state[5])
	assert.Equal(t, 1.0, state[16])
}

func TestEncode_IgnoresUnknownChaptersAndClamps(t *testing.T) {
	summary := PerformanceSummary{
		1: {Easy: {Correct: 9, Total: 3}},
		9: {Easy: {Correct: 1, Total: 1}},
	}
	state := Encode(summary, 2)
	require.Len(t, state, 6)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0}, state)
}

func TestBucketAccuracy_ZeroTotal(t *testing.T) {
	assert.Zero(t, Bucket{Correct: 0, Total: 0}.Accuracy())
	assert.Equal(t, 0.1, Bucket{Correct: 1, Total: 10}.Accuracy())
}

func TestSummaryMergeAndClone(t *testing.T) {
	a := PerformanceSummary{}
	a.Add(3, Hard, 1, 2)
	b := PerformanceSummary{}
	b.Add(3, Hard, 2, 3)
	b.Add(4, Easy, 1, 1)

	c := a.Clone()
	c.Merge(b)

	assert.Equal(t, Bucket{Correct: 3, Total: 5}, c.Bucket(3, Hard))
	assert.Equal(t, Bucket{Correct: 1, Total: 1}, c.Bucket(4, Easy))
	assert.Equal(t, Bucket{Correct: 1, Total: 2}, a.Bucket(3, Hard), "clone must not alias")
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{" Medium ", Medium, false},
		{"HARD", Hard, false},
		{"expert", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBucket)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
