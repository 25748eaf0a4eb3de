package adaptive

import "math/rand/v2"

// Transition is one recorded step. A nil NextState marks a terminal step.
type Transition struct {
	State     []float64
	Action    Action
	Reward    float64
	NextState []float64
}

// ReplayBuffer is a fixed-capacity FIFO of transitions. When full, each Push
// evicts the oldest entry.
type ReplayBuffer struct {
	items []Transition
	start int
	size  int
}

// NewReplayBuffer returns an empty buffer holding at most capacity entries.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	return &ReplayBuffer{items: make([]Transition, capacity)}
}

// Push appends t, evicting the oldest transition if the buffer is full.
func (b *ReplayBuffer) Push(t Transition) {
	if len(b.items) == 0 {
		return
	}
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = t
		b.size++
		return
	}
	b.items[b.start] = t
	b.start = (b.start + 1) % len(b.items)
}

// Len returns the number of stored transitions.
func (b *ReplayBuffer) Len() int { return b.size }

// Cap returns the buffer capacity.
func (b *ReplayBuffer) Cap() int { return len(b.items) }

// At returns the i-th transition, oldest first.
func (b *ReplayBuffer) At(i int) Transition {
	return b.items[(b.start+i)%len(b.items)]
}

// Sample draws n distinct transitions uniformly at random. It returns nil when
// fewer than n are stored.
func (b *ReplayBuffer) Sample(n int, rng *rand.Rand) []Transition {
	if n <= 0 || n > b.size {
		return nil
	}
	out := make([]Transition, 0, n)
	for _, i := range rng.Perm(b.size)[:n] {
		out = append(out, b.At(i))
	}
	return out
}
