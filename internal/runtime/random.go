package runtime

import "math/rand/v2"

// RandomSource is the uniform generator the evaluator draws from.
// Float64 must return values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewStreams returns n independent generators derived from seed.
// The same seed always yields the same streams, in the same order.
func NewStreams(seed uint64, n int) []RandomSource {
	streams := make([]RandomSource, n)
	for i := range streams {
		streams[i] = rand.New(rand.NewPCG(seed, uint64(i)+1))
	}
	return streams
}

// FixedSource returns the same value on every draw. Useful for replaying a
// scenario where the outcome of every trigger is known in advance.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// SequenceSource replays the given draws in order and then repeats the last.
type SequenceSource struct {
	draws []float64
	next  int
}

// NewSequenceSource creates a source over draws. It panics if draws is empty.
func NewSequenceSource(draws ...float64) *SequenceSource {
	if len(draws) == 0 {
		panic("runtime: NewSequenceSource requires at least one draw")
	}
	return &SequenceSource{draws: draws}
}

func (s *SequenceSource) Float64() float64 {
	v := s.draws[s.next]
	if s.next < len(s.draws)-1 {
		s.next++
	}
	return v
}
