package random

// Sequence replays a fixed list of values in [0, 1), cycling when exhausted.
// Intn derives its result from the next value, so a scripted sequence drives
// both kinds of draw.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Sequence over values. An empty list behaves as a
// constant 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Consumed returns how many values have been drawn.
func (s *Sequence) Consumed() int { return s.pos }
