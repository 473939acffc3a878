// Package config handles model and simulation configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/kalman/kf"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/sim"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Model is dynamic linear model configuration.
// Matrices are stored row by row.
type Model struct {
	// Static is number of static coefficients
	Static int `yaml:"static"`
	// Z stores observations
	Z []float64 `yaml:"z"`
	// X is design matrix: row t maps state to the mean of Z[t]
	X [][]float64 `yaml:"x"`
	// V stores observation noise variances
	V []float64 `yaml:"v"`
	// Mu is long run mean of the dynamic state
	Mu []float64 `yaml:"mu"`
	// Phi is persistence of the dynamic state
	Phi []float64 `yaml:"phi"`
	// W is innovation covariance of the dynamic state
	W [][]float64 `yaml:"w"`
	// M0 is prior mean
	M0 []float64 `yaml:"m0"`
	// C0 is prior covariance
	C0 [][]float64 `yaml:"c0"`
	// Stability is filter covariance update policy: simple or joseph
	Stability string `yaml:"stability,omitempty"`
	// Truth is optional simulated latent path
	Truth *Truth `yaml:"truth,omitempty"`
}

// Truth is simulated latent path
type Truth struct {
	// Alpha is static state
	Alpha []float64 `yaml:"alpha,omitempty"`
	// Beta stores dynamic state: row t holds the state at time t
	Beta [][]float64 `yaml:"beta"`
}

// Build creates model and initial condition from the configuration.
// It returns error if the configuration is inconsistent.
func (c *Model) Build() (*model.DLM, *model.InitCond, error) {
	nb := len(c.Phi)
	p, err := state.New(c.Static+nb, nb)
	if err != nil {
		return nil, nil, err
	}

	w, err := sym(c.W)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid w: %w", err)
	}

	mu := c.Mu
	if mu == nil {
		mu = make([]float64, nb)
	}

	ev, err := model.NewEvolution(p, vec(mu), vec(c.Phi), w)
	if err != nil {
		return nil, nil, err
	}

	x, err := dense(c.X)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid x: %w", err)
	}

	m, err := model.NewDLM(vec(c.Z), x, vec(c.V), ev)
	if err != nil {
		return nil, nil, err
	}

	c0, err := sym(c.C0)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid c0: %w", err)
	}

	ic := model.NewInitCond(vec(c.M0), c0)
	if err := m.CheckInitCond(ic); err != nil {
		return nil, nil, err
	}

	return m, ic, nil
}

// Policy returns filter covariance update policy.
// Empty policy is kf.Simple.
func (c *Model) Policy() (kf.Stability, error) {
	switch strings.ToLower(c.Stability) {
	case "", kf.Simple.String():
		return kf.Simple, nil
	case kf.Joseph.String():
		return kf.Joseph, nil
	default:
		return kf.Simple, fmt.Errorf("unknown stability policy: %q", c.Stability)
	}
}

// TruthBeta returns simulated dynamic state with the state at time t in column t.
// It returns nil if the configuration has no simulated path.
func (c *Model) TruthBeta() (*mat.Dense, error) {
	if c.Truth == nil || len(c.Truth.Beta) == 0 {
		return nil, nil
	}

	b, err := dense(c.Truth.Beta)
	if err != nil {
		return nil, fmt.Errorf("invalid truth: %w", err)
	}

	return mat.DenseCopyOf(b.T()), nil
}

// FromModel creates model configuration from model m with initial condition ic.
func FromModel(m *model.DLM, ic ffbs.InitCond) *Model {
	_, _, steps := m.Dims()
	p := m.Partition()
	ev := m.Evolution()

	c := &Model{
		Static: p.Static,
		Z:      make([]float64, steps),
		X:      make([][]float64, steps),
		V:      make([]float64, steps),
		Mu:     rawVec(p.DynamicVec(vec(ev.Mean()))),
		Phi:    ev.Phi(),
		W:      rows(p.DynamicCov(ev.Cov())),
		M0:     rawVec(ic.State()),
		C0:     rows(ic.Cov()),
	}

	for t := 0; t < steps; t++ {
		c.Z[t] = m.Obs(t)
		c.V[t] = m.ObsVar(t)
		c.X[t] = rawVec(m.Row(t))
	}

	return c
}

// SetTruth stores simulated latent path in the configuration.
func (c *Model) SetTruth(d *sim.Data) {
	var alpha []float64
	if c.Static > 0 {
		alpha = rawVec(d.Alpha)
	}

	c.Truth = &Truth{
		Alpha: alpha,
		Beta:  rows(d.Beta.T()),
	}
}

// LoadModel loads model configuration from a file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c := new(Model)
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return c, nil
}

// Save saves model configuration to a file.
func (c *Model) Save(path string) error {
	return save(path, c)
}

// Simulation is simulation configuration
type Simulation struct {
	// Static is number of static coefficients
	Static int `yaml:"static"`
	// Dynamic is number of dynamic coefficients
	Dynamic int `yaml:"dynamic"`
	// Steps is number of observations
	Steps int `yaml:"steps"`
	// Mu is long run mean of the dynamic state
	Mu []float64 `yaml:"mu"`
	// Phi is persistence of the dynamic state
	Phi []float64 `yaml:"phi"`
	// W is innovation covariance of the dynamic state
	W [][]float64 `yaml:"w"`
	// V is observation noise variance
	V float64 `yaml:"v"`
	// Alpha is static state; empty means it is drawn at random
	Alpha []float64 `yaml:"alpha,omitempty"`
	// Intercept sets the first design column to ones
	Intercept bool `yaml:"intercept"`
	// PriorVar is variance of the model prior
	PriorVar float64 `yaml:"prior_var"`
	// Seed seeds the simulation
	Seed uint64 `yaml:"seed"`
}

// DefaultSimulation returns default simulation configuration
func DefaultSimulation() *Simulation {
	return &Simulation{
		Static:    1,
		Dynamic:   1,
		Steps:     100,
		Mu:        []float64{0},
		Phi:       []float64{0.95},
		W:         [][]float64{{0.05}},
		V:         0.1,
		Intercept: true,
		PriorVar:  sim.DefaultPriorVar,
		Seed:      1,
	}
}

// Params returns simulation parameters.
func (s *Simulation) Params() (sim.Params, error) {
	w, err := sym(s.W)
	if err != nil {
		return sim.Params{}, fmt.Errorf("invalid w: %w", err)
	}

	var alpha []float64
	if len(s.Alpha) > 0 {
		alpha = s.Alpha
	}

	return sim.Params{
		Static:    s.Static,
		Dynamic:   s.Dynamic,
		Steps:     s.Steps,
		Mu:        s.Mu,
		Phi:       s.Phi,
		W:         w,
		V:         s.V,
		Alpha:     alpha,
		Intercept: s.Intercept,
		PriorVar:  s.PriorVar,
	}, nil
}

// LoadSimulation loads simulation configuration from a file.
// Fields missing from the file keep their default values.
func LoadSimulation(path string) (*Simulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	s := DefaultSimulation()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return s, nil
}

// Save saves simulation configuration to a file.
func (s *Simulation) Save(path string) error {
	return save(path, s)
}

func save(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
