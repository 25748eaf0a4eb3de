package adaptive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
)

// Adam hyperparameters other than the step size.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// weightsMagic prefixes every serialized network.
var weightsMagic = [4]byte{'Q', 'Z', 'A', 'W'}

// layer is a dense layer y = W x + b with Adam moment estimates.
// W is stored row-major: W[o*in+i].
type layer struct {
	in, out int
	w, b    []float64

	mw, vw []float64
	mb, vb []float64
}

func newLayer(in, out int, rng *rand.Rand) *layer {
	l := &layer{
		in:  in,
		out: out,
		w:   make([]float64, in*out),
		b:   make([]float64, out),
	}
	// Uniform in ±1/sqrt(fan_in) for weights and biases.
	bound := 1 / math.Sqrt(float64(in))
	for i := range l.w {
		l.w[i] = (2*rng.Float64() - 1) * bound
	}
	for i := range l.b {
		l.b[i] = (2*rng.Float64() - 1) * bound
	}
	l.resetMoments()
	return l
}

func (l *layer) resetMoments() {
	l.mw = make([]float64, len(l.w))
	l.vw = make([]float64, len(l.w))
	l.mb = make([]float64, len(l.b))
	l.vb = make([]float64, len(l.b))
}

func (l *layer) forward(x []float64) []float64 {
	z := make([]float64, l.out)
	for o := 0; o < l.out; o++ {
		sum := l.b[o]
		row := l.w[o*l.in : (o+1)*l.in]
		for i, xi := range x {
			sum += row[i] * xi
		}
		z[o] = sum
	}
	return z
}

// Network is a fully connected ReLU network trained with MSE loss and Adam.
// It is not safe for concurrent use.
type Network struct {
	shape  Shape
	layers []*layer
	lr     float64
	step   int
}

var _ Approximator = (*Network)(nil)

// NewNetwork builds a randomly initialised network for shape.
func NewNetwork(shape Shape, learningRate float64, rng *rand.Rand) *Network {
	sizes := shape.sizes()
	n := &Network{shape: shape, lr: learningRate}
	for i := 0; i+1 < len(sizes); i++ {
		n.layers = append(n.layers, newLayer(sizes[i], sizes[i+1], rng))
	}
	return n
}

// Shape implements Approximator.
func (n *Network) Shape() Shape {
	return n.shape
}

// Predict implements Approximator.
func (n *Network) Predict(state []float64) ([]float64, error) {
	if len(state) != n.shape.Input {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateSize, len(state), n.shape.Input)
	}
	acts, _ := n.forward(state)
	out := acts[len(acts)-1]
	scores := make([]float64, len(out))
	copy(scores, out)
	return scores, nil
}

// forward returns the activations of every layer (index 0 is the input) and
// the pre-activations of every layer.
func (n *Network) forward(x []float64) (acts, pre [][]float64) {
	acts = make([][]float64, 0, len(n.layers)+1)
	pre = make([][]float64, 0, len(n.layers))
	acts = append(acts, x)
	h := x
	for i, l := range n.layers {
		z := l.forward(h)
		pre = append(pre, z)
		if i == len(n.layers)-1 {
			h = z
		} else {
			h = relu(z)
		}
		acts = append(acts, h)
	}
	return acts, pre
}

// Update implements Approximator. The loss is the mean squared error over all
// outputs against a target equal to the current prediction everywhere except
// at action, so only that output carries gradient.
func (n *Network) Update(state []float64, action Action, target float64) error {
	if len(state) != n.shape.Input {
		return fmt.Errorf("%w: got %d, want %d", ErrStateSize, len(state), n.shape.Input)
	}
	if err := ValidateAction(action, n.shape.Output); err != nil {
		return err
	}

	acts, pre := n.forward(state)
	out := acts[len(acts)-1]

	delta := make([]float64, n.shape.Output)
	delta[action] = 2 * (out[action] - target) / float64(n.shape.Output)

	n.step++
	for li := len(n.layers) - 1; li >= 0; li-- {
		l := n.layers[li]
		input := acts[li]

		var prev []float64
		if li > 0 {
			prev = make([]float64, l.in)
			for o := 0; o < l.out; o++ {
				if delta[o] == 0 {
					continue
				}
				row := l.w[o*l.in : (o+1)*l.in]
				for i := range prev {
					prev[i] += row[i] * delta[o]
				}
			}
			for i, z := range pre[li-1] {
				if z <= 0 {
					prev[i] = 0
				}
			}
		}

		for o := 0; o < l.out; o++ {
			for i := 0; i < l.in; i++ {
				k := o*l.in + i
				n.adam(&l.w[k], &l.mw[k], &l.vw[k], delta[o]*input[i])
			}
			n.adam(&l.b[o], &l.mb[o], &l.vb[o], delta[o])
		}

		delta = prev
	}
	return nil
}

func (n *Network) adam(param, m, v *float64, grad float64) {
	*m = adamBeta1*(*m) + (1-adamBeta1)*grad
	*v = adamBeta2*(*v) + (1-adamBeta2)*grad*grad
	mHat := *m / (1 - math.Pow(adamBeta1, float64(n.step)))
	vHat := *v / (1 - math.Pow(adamBeta2, float64(n.step)))
	*param -= n.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
}

// MarshalBinary encodes the layer sizes followed by every weight and bias as
// little-endian float64. Optimizer state is not included.
func (n *Network) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(weightsMagic[:])
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(n.layers))); err != nil {
		return nil, err
	}
	for _, l := range n.layers {
		if err := binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(l.in), uint32(l.out)}); err != nil {
			return nil, err
		}
	}
	for _, l := range n.layers {
		if err := binary.Write(&buf, binary.LittleEndian, l.w); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, l.b); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores parameters written by MarshalBinary. Data from a
// network of any other shape is rejected with ErrWeightsShape and leaves n
// unchanged.
func (n *Network) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != weightsMagic {
		return fmt.Errorf("%w: bad header", ErrWeightsShape)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: read layer count: %v", ErrWeightsShape, err)
	}
	if int(count) != len(n.layers) {
		return fmt.Errorf("%w: %d layers, want %d", ErrWeightsShape, count, len(n.layers))
	}
	for i, l := range n.layers {
		var dims [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
			return fmt.Errorf("%w: read layer %d dims: %v", ErrWeightsShape, i, err)
		}
		if int(dims[0]) != l.in || int(dims[1]) != l.out {
			return fmt.Errorf("%w: layer %d is %dx%d, want %dx%d", ErrWeightsShape, i, dims[0], dims[1], l.in, l.out)
		}
	}

	loaded := make([][2][]float64, len(n.layers))
	for i, l := range n.layers {
		w := make([]float64, len(l.w))
		b := make([]float64, len(l.b))
		if err := binary.Read(r, binary.LittleEndian, w); err != nil {
			return fmt.Errorf("%w: read layer %d weights: %v", ErrWeightsShape, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, b); err != nil {
			return fmt.Errorf("%w: read layer %d biases: %v", ErrWeightsShape, i, err)
		}
		loaded[i] = [2][]float64{w, b}
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrWeightsShape, r.Len())
	}

	for i, l := range n.layers {
		l.w, l.b = loaded[i][0], loaded[i][1]
		l.resetMoments()
	}
	n.step = 0
	return nil
}

func relu(z []float64) []float64 {
	h := make([]float64, len(z))
	for i, v := range z {
		if v > 0 {
			h[i] = v
		}
	}
	return h
}
