package adaptive

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShape() Shape {
	return Shape{Input: 18, Hidden: []int{64, 64}, Output: 18}
}

func TestNetwork_PredictShape(t *testing.T) {
	n := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(7, 7)))

	scores, err := n.Predict(make([]float64, 18))
	require.NoError(t, err)
	assert.Len(t, scores, 18)

	_, err = n.Predict(make([]float64, 17))
	assert.ErrorIs(t, err, ErrStateSize)
}

func TestNetwork_UpdateMovesTowardTarget(t *testing.T) {
	n := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(3, 4)))
	state := make([]float64, 18)
	state[4] = 0.5

	before, err := n.Predict(state)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.NoError(t, n.Update(state, 4, 5))
	}

	after, err := n.Predict(state)
	require.NoError(t, err)
	assert.Greater(t, after[4], before[4])
}

func TestNetwork_UpdateRejectsBadAction(t *testing.T) {
	n := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(1, 1)))
	err := n.Update(make([]float64, 18), 18, 1)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestNetwork_BinaryRoundTrip(t *testing.T) {
	src := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(11, 12)))
	dst := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(13, 14)))

	data, err := src.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, dst.UnmarshalBinary(data))

	state := []float64{0.1, 0.2, 0.3, 0, 0, 0, 1, 1, 1, 0.5, 0.5, 0.5, 0, 0.9, 0, 0.4, 0, 0}
	want, _ := src.Predict(state)
	got, _ := dst.Predict(state)
	assert.Equal(t, want, got)
}

func TestNetwork_UnmarshalRejectsOtherShape(t *testing.T) {
	small := NewNetwork(Shape{Input: 6, Hidden: []int{8}, Output: 6}, 0.001, rand.New(rand.NewPCG(1, 2)))
	data, err := small.MarshalBinary()
	require.NoError(t, err)

	n := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(3, 4)))
	before, _ := n.Predict(make([]float64, 18))

	err = n.UnmarshalBinary(data)
	require.ErrorIs(t, err, ErrWeightsShape)

	after, _ := n.Predict(make([]float64, 18))
	assert.Equal(t, before, after, "failed load must leave parameters untouched")
}

func TestNetwork_UnmarshalRejectsGarbage(t *testing.T) {
	n := NewNetwork(testShape(), 0.001, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, n.UnmarshalBinary([]byte("nope")), ErrWeightsShape)
	assert.ErrorIs(t, n.UnmarshalBinary(nil), ErrWeightsShape)
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, testShape().Equal(testShape()))
	assert.False(t, testShape().Equal(Shape{Input: 18, Hidden: []int{64}, Output: 18}))
}
