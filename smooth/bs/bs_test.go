package bs

import (
	"context"
	"errors"
	"testing"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/kalman/kf"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/noise"
	"github.com/milosgajdos/go-ffbs/smooth"
	"github.com/milosgajdos/go-ffbs/state"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// newModel creates a model with n augmented and nb dynamic coefficients.
// Design rows are drawn at random with seed; observations are given by z.
func newModel(seed uint64, n, nb int, phi, w, v float64, z []float64) (*model.DLM, *model.InitCond) {
	rnd := rand.New(rand.NewSource(seed))

	p, err := state.New(n, nb)
	if err != nil {
		panic(err)
	}

	phis := make([]float64, nb)
	wd := mat.NewSymDense(nb, nil)
	for i := 0; i < nb; i++ {
		phis[i] = phi
		wd.SetSym(i, i, w)
	}

	ev, err := model.NewEvolution(p, mat.NewVecDense(nb, nil), mat.NewVecDense(nb, phis), wd)
	if err != nil {
		panic(err)
	}

	steps := len(z)
	x := mat.NewDense(steps, n, nil)
	vs := mat.NewVecDense(steps, nil)
	for t := 0; t < steps; t++ {
		vs.SetVec(t, v)
		for j := 0; j < n; j++ {
			x.Set(t, j, rnd.NormFloat64())
		}
	}

	m, err := model.NewDLM(mat.NewVecDense(steps, z), x, vs, ev)
	if err != nil {
		panic(err)
	}

	c0 := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		c0.SetSym(i, i, 1.0)
	}

	return m, model.NewInitCond(mat.NewVecDense(n, nil), c0)
}

func filter(m *model.DLM, ic ffbs.InitCond) *kf.Trajectory {
	f, err := kf.New(m, ic, nil)
	if err != nil {
		panic(err)
	}

	tr, err := f.Trajectory(context.Background())
	if err != nil {
		panic(err)
	}

	return tr
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	m, _ := newModel(1, 3, 2, 0.9, 0.1, 1.0, []float64{1, 2, 3})
	s, err := New(m)
	assert.NotNil(s)
	assert.NoError(err)
	assert.Equal([]float64{0.9, 0.9}, s.phi)

	s, err = New(nil)
	assert.Nil(s)
	assert.Error(err)
}

func TestSample(t *testing.T) {
	assert := assert.New(t)

	m, ic := newModel(3, 4, 1, 0.7, 0.3, 1.0, []float64{0.5, 1.5, -1, 2, 0})
	bs, err := New(m)
	assert.NoError(err)

	z, err := noise.NewZero()
	assert.NoError(err)

	var s smooth.Backward = bs
	path, err := s.Sample(context.Background(), filter(m, ic), z)
	assert.NoError(err)
	assert.Equal(3, path.Static().Len())

	r, c := path.Dynamic().Dims()
	assert.Equal(1, r)
	assert.Equal(6, c)

	path, err = s.Sample(context.Background(), nil, z)
	assert.Nil(path)
	assert.Error(err)
}

func TestDrawDims(t *testing.T) {
	assert := assert.New(t)

	g, err := noise.NewGaussian(1)
	assert.NoError(err)

	for _, test := range []struct {
		n, nb, steps int
		alpha        int
	}{
		{n: 1, nb: 1, steps: 1, alpha: 1},
		{n: 3, nb: 2, steps: 10, alpha: 1},
		{n: 5, nb: 2, steps: 7, alpha: 3},
		{n: 4, nb: 4, steps: 20, alpha: 1},
	} {
		z := make([]float64, test.steps)
		for i := range z {
			z[i] = float64(i % 3)
		}
		m, ic := newModel(2, test.n, test.nb, 0.8, 0.2, 0.5, z)
		s, err := New(m)
		assert.NoError(err)

		d, err := s.Draw(context.Background(), filter(m, ic), g)
		assert.NoError(err)

		r, c := d.Dynamic().Dims()
		assert.Equal(test.nb, r)
		assert.Equal(test.steps+1, c)
		assert.Equal(test.steps, d.Steps())
		assert.Equal(test.alpha, d.Static().Len())
		assert.Equal(test.nb, d.Beta(test.steps).Len())
		assert.Equal(m.Partition(), d.Partition())

		// no static state: the single alpha slot stays untouched
		if test.n == test.nb {
			assert.Equal(0.0, d.Static().AtVec(0))
		}
	}
}

func TestDrawScalar(t *testing.T) {
	assert := assert.New(t)

	// beta_1 = 0.5*beta_0 + w, z_0 = beta_1 + v; W = V = C0 = 1, z_0 = 2
	ev, err := model.NewEvolution(state.Partition{Dynamic: 1},
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{0.5}),
		mat.NewSymDense(1, []float64{1}))
	assert.NoError(err)
	m, err := model.NewDLM(
		mat.NewVecDense(1, []float64{2}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewVecDense(1, []float64{1}),
		ev)
	assert.NoError(err)
	ic := model.NewInitCond(mat.NewVecDense(1, []float64{0}), mat.NewSymDense(1, []float64{1}))

	s, err := New(m)
	assert.NoError(err)
	tr := filter(m, ic)

	// zero noise yields conditional means
	zero, _ := noise.NewZero()
	d, err := s.Draw(context.Background(), tr, zero)
	assert.NoError(err)
	assert.InDelta(1.1111111111111112, d.Beta(1).AtVec(0), 1e-12)
	assert.InDelta(0.4444444444444445, d.Beta(0).AtVec(0), 1e-12)

	// unit draws shift every state by the square root of its conditional variance
	ones, _ := noise.NewScripted([]float64{1})
	d, err = s.Draw(context.Background(), tr, ones)
	assert.NoError(err)
	assert.InDelta(1.856467103611041, d.Beta(1).AtVec(0), 1e-12)
	assert.InDelta(1.6370140324443323, d.Beta(0).AtVec(0), 1e-12)
}

func TestDrawMoments(t *testing.T) {
	assert := assert.New(t)

	ev, err := model.NewEvolution(state.Partition{Dynamic: 1},
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{0.5}),
		mat.NewSymDense(1, []float64{1}))
	assert.NoError(err)
	m, err := model.NewDLM(
		mat.NewVecDense(1, []float64{2}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewVecDense(1, []float64{1}),
		ev)
	assert.NoError(err)
	ic := model.NewInitCond(mat.NewVecDense(1, []float64{0}), mat.NewSymDense(1, []float64{1}))

	s, err := New(m)
	assert.NoError(err)
	tr := filter(m, ic)
	g, err := noise.NewGaussian(5)
	assert.NoError(err)

	// smoothed beta_0 ~ N(4/9, 8/9)
	k := 20000
	var sum, sum2 float64
	for i := 0; i < k; i++ {
		d, err := s.Draw(context.Background(), tr, g)
		assert.NoError(err)
		b := d.Beta(0).AtVec(0)
		sum += b
		sum2 += b * b
	}
	mean := sum / float64(k)
	assert.InDelta(4.0/9.0, mean, 0.03)
	assert.InDelta(8.0/9.0, sum2/float64(k)-mean*mean, 0.05)
}

func TestDrawReproducible(t *testing.T) {
	assert := assert.New(t)

	m, ic := newModel(3, 4, 2, 0.7, 0.3, 0.5, []float64{1, -1, 0.5, 2, 0, 1.5, -0.5, 3})
	s, err := New(m)
	assert.NoError(err)

	g, err := noise.NewGaussian(99)
	assert.NoError(err)
	script := mat.Col(nil, 0, g.Sample(4+2*8))

	n1, _ := noise.NewScripted(script)
	d1, err := s.Draw(context.Background(), filter(m, ic), n1)
	assert.NoError(err)
	// terminal augmented state plus a dynamic state per step
	assert.Equal(4+2*8, n1.Drawn())

	n2, _ := noise.NewScripted(script)
	d2, err := s.Draw(context.Background(), filter(m, ic), n2)
	assert.NoError(err)

	assert.True(mat.Equal(d1.Static(), d2.Static()))
	assert.True(mat.Equal(d1.Dynamic(), d2.Dynamic()))

	// Sample is equivalent to Draw
	n2.Reset()
	p, err := s.Sample(context.Background(), filter(m, ic), n2)
	assert.NoError(err)
	assert.True(mat.Equal(d1.Dynamic(), p.Dynamic()))
}

func TestDrawStaticInvariance(t *testing.T) {
	assert := assert.New(t)

	// unit persistence and negligible dynamic innovation
	m, ic := newModel(4, 3, 1, 1.0, 1e-3, 0.5, []float64{1, 2, 0.5, -1, 0})
	s, err := New(m)
	assert.NoError(err)
	tr := filter(m, ic)

	// identical terminal draws, different backward draws
	n1, _ := noise.NewScripted([]float64{0.3, -1.2, 0.8, 0.1, 0.2, 0.3, 0.4, 0.5})
	n2, _ := noise.NewScripted([]float64{0.3, -1.2, 0.8, -0.5, 1.5, -2.0, 0.7, 0.9})

	d1, err := s.Draw(context.Background(), tr, n1)
	assert.NoError(err)
	d2, err := s.Draw(context.Background(), tr, n2)
	assert.NoError(err)

	assert.Equal(2, d1.Static().Len())
	assert.True(mat.Equal(d1.Static(), d2.Static()))
}

func TestDrawCollapse(t *testing.T) {
	assert := assert.New(t)

	// z = X*beta with constant beta and (almost) no noise
	truth := []float64{1.0, -2.0}
	steps := 20
	rnd := rand.New(rand.NewSource(6))
	x := mat.NewDense(steps, 2, nil)
	z := mat.NewVecDense(steps, nil)
	v := mat.NewVecDense(steps, nil)
	for t := 0; t < steps; t++ {
		x.Set(t, 0, rnd.NormFloat64())
		x.Set(t, 1, rnd.NormFloat64())
		z.SetVec(t, x.At(t, 0)*truth[0]+x.At(t, 1)*truth[1])
		v.SetVec(t, 1e-6)
	}

	ev, err := model.NewEvolution(state.Partition{Dynamic: 2},
		mat.NewVecDense(2, nil),
		mat.NewVecDense(2, []float64{1, 1}),
		mat.NewSymDense(2, []float64{1e-6, 0, 0, 1e-6}))
	assert.NoError(err)
	m, err := model.NewDLM(z, x, v, ev)
	assert.NoError(err)
	ic := model.NewInitCond(mat.NewVecDense(2, nil), mat.NewSymDense(2, []float64{1, 0, 0, 1}))

	s, err := New(m)
	assert.NoError(err)
	g, err := noise.NewGaussian(8)
	assert.NoError(err)

	d, err := s.Draw(context.Background(), filter(m, ic), g)
	assert.NoError(err)

	for t := 0; t <= steps; t++ {
		assert.InDeltaSlice(truth, mat.Col(nil, 0, d.Beta(t)), 0.05, "step %d", t)
	}
}

func TestDrawNotPositiveDefinite(t *testing.T) {
	assert := assert.New(t)

	// zero prior covariance and no innovation leave a degenerate posterior
	ev, err := model.NewEvolution(state.Partition{Dynamic: 1},
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{1}),
		mat.NewSymDense(1, []float64{0}))
	assert.NoError(err)
	m, err := model.NewDLM(
		mat.NewVecDense(2, []float64{1, 2}),
		mat.NewDense(2, 1, []float64{1, 1}),
		mat.NewVecDense(2, []float64{1, 1}),
		ev)
	assert.NoError(err)
	ic := model.NewInitCond(mat.NewVecDense(1, nil), mat.NewSymDense(1, nil))

	s, err := New(m)
	assert.NoError(err)
	zero, _ := noise.NewZero()

	d, err := s.Draw(context.Background(), filter(m, ic), zero)
	assert.Nil(d)
	assert.True(errors.Is(err, ffbs.ErrNotPositiveDefinite))

	var se *ffbs.StepError
	assert.True(errors.As(err, &se))
	assert.Equal(ffbs.Sampling, se.Phase)
	assert.Equal(2, se.Step)

	p, err := s.Sample(context.Background(), filter(m, ic), zero)
	assert.Nil(p)
	assert.Error(err)
}

func TestDrawErrors(t *testing.T) {
	assert := assert.New(t)

	m, ic := newModel(7, 2, 1, 0.9, 0.1, 1.0, []float64{1, 2, 3})
	s, err := New(m)
	assert.NoError(err)
	tr := filter(m, ic)
	zero, _ := noise.NewZero()

	d, err := s.Draw(context.Background(), nil, zero)
	assert.Nil(d)
	assert.Error(err)

	d, err = s.Draw(context.Background(), tr, nil)
	assert.Nil(d)
	assert.Error(err)

	// trajectory of a different model
	other, oic := newModel(7, 3, 1, 0.9, 0.1, 1.0, []float64{1, 2, 3})
	d, err = s.Draw(context.Background(), filter(other, oic), zero)
	assert.Nil(d)
	assert.True(errors.Is(err, ffbs.ErrDimensionMismatch))

	// same state size split differently into static and dynamic parts
	split, sic := newModel(7, 2, 2, 0.9, 0.1, 1.0, []float64{1, 2, 3})
	d, err = s.Draw(context.Background(), filter(split, sic), zero)
	assert.Nil(d)
	assert.True(errors.Is(err, ffbs.ErrDimensionMismatch))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err = s.Draw(ctx, tr, zero)
	assert.Nil(d)
	assert.True(errors.Is(err, context.Canceled))
}

func TestDrawString(t *testing.T) {
	assert := assert.New(t)

	d := newDraw(state.Partition{Static: 1, Dynamic: 1}, 2)
	str := d.String()
	assert.Contains(str, "Alpha=")
	assert.Contains(str, "Beta=")
}
