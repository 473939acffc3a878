package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scripted is noise which replays a fixed sequence of draws.
// When the sequence is exhausted it starts over from the beginning.
type Scripted struct {
	// draws stores the scripted draws
	draws []float64
	// pos is position of the next draw
	pos int
	// n counts all drawn values
	n int
}

// NewScripted creates new scripted noise which replays draws and returns it.
// It returns error if draws is empty.
func NewScripted(draws []float64) (*Scripted, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("invalid scripted draws: %v", draws)
	}

	d := make([]float64, len(draws))
	copy(d, draws)

	return &Scripted{draws: d}, nil
}

// Sample returns the next n scripted draws.
func (s *Scripted) Sample(n int) mat.Vector {
	if n <= 0 {
		return &mat.VecDense{}
	}

	data := make([]float64, n)
	for i := range data {
		data[i] = s.draws[s.pos]
		s.pos = (s.pos + 1) % len(s.draws)
	}
	s.n += n

	return mat.NewVecDense(n, data)
}

// Drawn returns the number of values drawn since the last reset.
func (s *Scripted) Drawn() int {
	return s.n
}

// Reset rewinds the scripted noise to its first draw.
func (s *Scripted) Reset() {
	s.pos = 0
	s.n = 0
}

// String implements the Stringer interface.
func (s *Scripted) String() string {
	return fmt.Sprintf("Scripted{\nDraws=%v\n}", s.draws)
}
