package noise

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian is standard normal noise
type Gaussian struct {
	// dist is a univariate standard normal distribution
	dist distuv.Normal
	// seed is the seed of the random source
	seed uint64
}

// NewGaussian creates new standard normal noise seeded with seed and returns it.
// Two noises created with the same seed generate the same sequence of samples.
func NewGaussian(seed uint64) (*Gaussian, error) {
	return &Gaussian{
		dist: newStdNormal(seed),
		seed: seed,
	}, nil
}

// NewGaussianTime creates new standard normal noise seeded with current time and returns it.
func NewGaussianTime() (*Gaussian, error) {
	return NewGaussian(uint64(time.Now().UnixNano()))
}

// Sample returns n independent standard normal samples.
func (g *Gaussian) Sample(n int) mat.Vector {
	if n <= 0 {
		return &mat.VecDense{}
	}

	data := make([]float64, n)
	for i := range data {
		data[i] = g.dist.Rand()
	}

	return mat.NewVecDense(n, data)
}

// Seed returns the seed of the noise.
func (g *Gaussian) Seed() uint64 {
	return g.seed
}

// Reset resets Gaussian noise to its initial seed.
func (g *Gaussian) Reset() {
	g.dist = newStdNormal(g.seed)
}

func newStdNormal(seed uint64) distuv.Normal {
	return distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewSource(seed),
	}
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=0\nSigma=1\nSeed=%d\n}", g.seed)
}
