package adaptive

import (
	"bytes"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScores always predicts the same scores and counts updates.
type fixedScores struct {
	scores  []float64
	updates int
}

func (f *fixedScores) Predict([]float64) ([]float64, error) {
	return append([]float64(nil), f.scores...), nil
}

func (f *fixedScores) Update([]float64, Action, float64) error {
	f.updates++
	return nil
}

func (f *fixedScores) Shape() Shape {
	return Shape{Input: len(f.scores), Output: len(f.scores)}
}

func (f *fixedScores) MarshalBinary() ([]byte, error) { return nil, nil }
func (f *fixedScores) UnmarshalBinary([]byte) error   { return nil }

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func newTestAgent(t *testing.T, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(42, 42))), WithLogger(quietLogger())}, opts...)
	a, err := NewAgent(DefaultConfig(), opts...)
	require.NoError(t, err)
	return a
}

func TestNewAgent_ShapeMismatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActionSize = 17
	_, err := NewAgent(cfg)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	stub := &fixedScores{scores: make([]float64, 12)}
	_, err = NewAgent(DefaultConfig(), WithApproximator(stub), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAct_GreedyIsDeterministic(t *testing.T) {
	scores := make([]float64, 18)
	scores[11] = 0.7
	scores[4] = 0.7
	scores[2] = 0.3
	a := newTestAgent(t, WithApproximator(&fixedScores{scores: scores}))
	a.SetEpsilon(0)

	state := make([]float64, 18)
	for i := 0; i < 20; i++ {
		action, err := a.Act(state)
		require.NoError(t, err)
		assert.Equal(t, Action(4), action, "ties resolve to the lowest index")
	}
	assert.Zero(t, a.Epsilon())
}

func TestAct_ExploresWhenEpsilonIsOne(t *testing.T) {
	scores := make([]float64, 18)
	scores[0] = 10
	a := newTestAgent(t, WithApproximator(&fixedScores{scores: scores}))
	require.Equal(t, 1.0, a.Epsilon())

	seen := map[Action]bool{}
	for i := 0; i < 500; i++ {
		action, err := a.Act(make([]float64, 18))
		require.NoError(t, err)
		require.NoError(t, ValidateAction(action, 18))
		seen[action] = true
	}
	assert.Greater(t, len(seen), 10)
	assert.Equal(t, 1.0, a.Epsilon(), "Act must not decay epsilon")
}

func TestAct_RejectsWrongStateSize(t *testing.T) {
	a := newTestAgent(t)
	_, err := a.Act(make([]float64, 5))
	assert.ErrorIs(t, err, ErrStateSize)
}

func TestReplay_NoOpBelowBatchSize(t *testing.T) {
	stub := &fixedScores{scores: make([]float64, 18)}
	a := newTestAgent(t, WithApproximator(stub))
	for i := 0; i < 31; i++ {
		a.Remember(make([]float64, 18), Action(i%18), 1, nil)
	}

	trained, err := a.Replay(32)
	require.NoError(t, err)
	assert.False(t, trained)
	assert.Zero(t, stub.updates)
	assert.Equal(t, 1.0, a.Epsilon())
}

func TestReplay_DecaysEpsilonToFloor(t *testing.T) {
	stub := &fixedScores{scores: make([]float64, 18)}
	a := newTestAgent(t, WithApproximator(stub))
	for i := 0; i < 4; i++ {
		a.Remember(make([]float64, 18), 0, 1, make([]float64, 18))
	}

	trained, err := a.Replay(4)
	require.NoError(t, err)
	require.True(t, trained)
	assert.Equal(t, 4, stub.updates)
	assert.InDelta(t, 0.995, a.Epsilon(), 1e-12)

	for i := 0; i < 2000; i++ {
		_, err := a.Replay(4)
		require.NoError(t, err)
	}
	assert.Equal(t, 0.01, a.Epsilon())
}

func TestRemember_CopiesSlices(t *testing.T) {
	a := newTestAgent(t)
	state := make([]float64, 18)
	a.Remember(state, 3, 1, nil)
	state[0] = 99

	tr := a.Buffer().At(0)
	assert.Zero(t, tr.State[0])
	assert.Nil(t, tr.NextState)
}

func TestComputeReward(t *testing.T) {
	summary := PerformanceSummary{}
	summary.Add(3, Hard, 1, 10)
	summary.Add(1, Easy, 9, 10)
	summary.Add(2, Medium, 5, 10)

	a := newTestAgent(t)
	tests := []struct {
		name   string
		action Action
		want   float64
	}{
		{"weak bucket", EncodeAction(3, Hard), 1},
		{"strong bucket", EncodeAction(1, Easy), -1},
		{"exactly half", EncodeAction(2, Medium), -1},
		{"untried bucket", EncodeAction(6, Hard), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ComputeReward(summary, tt.action))
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "policy.weights")
	src := newTestAgent(t)
	require.NoError(t, src.Save(path))

	cfg := DefaultConfig()
	cfg.WeightsPath = path
	dst, err := NewAgent(cfg, WithRand(rand.New(rand.NewPCG(9, 9))), WithLogger(quietLogger()))
	require.NoError(t, err)

	state := make([]float64, 18)
	state[7] = 0.4
	want, err := src.Values(state)
	require.NoError(t, err)
	got, err := dst.Values(state)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_MissingFileStartsFresh(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.WeightsPath = filepath.Join(t.TempDir(), "absent.weights")

	a, err := NewAgent(cfg, WithLogger(log.New(&logs, "", 0)))
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Contains(t, logs.String(), "starting fresh")
}

func TestLoad_OtherShapeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.weights")
	small := NewNetwork(Shape{Input: 18, Hidden: []int{16}, Output: 18}, 0.001, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, SaveWeights(path, small))

	a := newTestAgent(t)
	err := a.Load(path)
	assert.ErrorIs(t, err, ErrWeightsShape)
}

func TestLoad_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.weights")
	require.NoError(t, os.WriteFile(path, []byte("QZAW\x01"), 0o644))

	a := newTestAgent(t)
	assert.ErrorIs(t, a.Load(path), ErrWeightsShape)
}

// A learner weak only in chapter 3 (hard) should, after training on
// terminal transitions, be steered toward that bucket.
func TestAgent_LearnsWeakBucket(t *testing.T) {
	summary := PerformanceSummary{}
	for ch := 1; ch <= DefaultChapterCount; ch++ {
		for _, d := range Difficulties {
			summary.Add(ch, d, 8, 10)
		}
	}
	summary[3][Hard] = Bucket{Correct: 1, Total: 10}

	a := newTestAgent(t)
	state := Encode(summary, DefaultChapterCount)

	for i := 0; i < 1000; i++ {
		action := Action(i % 18)
		a.Remember(state, action, a.ComputeReward(summary, action), nil)
	}
	for i := 0; i < 400; i++ {
		_, err := a.Replay(32)
		require.NoError(t, err)
	}

	a.SetEpsilon(0)
	action, err := a.Act(state)
	require.NoError(t, err)
	assert.Equal(t, EncodeAction(3, Hard), action)
	assert.Equal(t, 1.0, a.ComputeReward(summary, action))
}
