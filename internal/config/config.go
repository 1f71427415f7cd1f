package config

import (
	"fmt"
	"os"

	"github.com/san-kum/fracsolve/internal/bratu"
	"github.com/san-kum/fracsolve/internal/nlsolve"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAlpha      = 0.75
	DefaultLambda     = 1.0
	DefaultN          = 51
	DefaultGamma      = 10.0
	DefaultMethod     = "newton"
	DefaultJacobian   = JacobianFD
	DefaultMaxIter    = 100
	DefaultTol        = 1e-10
	DefaultEvalPoints = 201
)

// Jacobian modes.
const (
	JacobianFD       = "fd"
	JacobianAnalytic = "analytic"
)

type Config struct {
	Alpha  float64   `yaml:"alpha"`
	Lambda float64   `yaml:"lambda"`
	N      int       `yaml:"n"`
	Gamma  float64   `yaml:"gamma"`
	Grid   []float64 `yaml:"grid,omitempty"`

	Method   string  `yaml:"method"`
	Jacobian string  `yaml:"jacobian"`
	MaxIter  int     `yaml:"max_iter"`
	Tol      float64 `yaml:"tol"`

	// EvalPoints is the size of the uniform grid the solution is sampled on
	// for output and comparison.
	EvalPoints int `yaml:"eval_points"`
}

func DefaultConfig() *Config {
	return &Config{
		Alpha:      DefaultAlpha,
		Lambda:     DefaultLambda,
		N:          DefaultN,
		Gamma:      DefaultGamma,
		Method:     DefaultMethod,
		Jacobian:   DefaultJacobian,
		MaxIter:    DefaultMaxIter,
		Tol:        DefaultTol,
		EvalPoints: DefaultEvalPoints,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params returns the problem description.
func (c *Config) Params() bratu.Params {
	return bratu.Params{
		Alpha:  c.Alpha,
		Lambda: c.Lambda,
		N:      c.N,
		Gamma:  c.Gamma,
		Grid:   append([]float64(nil), c.Grid...),
	}
}

// Settings returns the root-finder limits.
func (c *Config) Settings() nlsolve.Settings {
	s := nlsolve.DefaultSettings()
	s.MaxIterations = c.MaxIter
	s.Tolerance = c.Tol
	return s
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := nlsolve.Lookup(c.Method); err != nil {
		return fmt.Errorf("%w: %w", bratu.ErrInvalidParams, err)
	}
	if c.Jacobian != JacobianFD && c.Jacobian != JacobianAnalytic {
		return fmt.Errorf("%w: jacobian must be %q or %q, got %q",
			bratu.ErrInvalidParams, JacobianFD, JacobianAnalytic, c.Jacobian)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("%w: max_iter must be positive, got %d", bratu.ErrInvalidParams, c.MaxIter)
	}
	if c.Tol <= 0 {
		return fmt.Errorf("%w: tol must be positive, got %g", bratu.ErrInvalidParams, c.Tol)
	}
	if c.EvalPoints < 2 {
		return fmt.Errorf("%w: eval_points must be at least 2, got %d", bratu.ErrInvalidParams, c.EvalPoints)
	}
	return nil
}

// SolverOptions translates the method selection into solver options.
func (c *Config) SolverOptions() ([]bratu.Option, error) {
	m, err := nlsolve.Lookup(c.Method)
	if err != nil {
		return nil, err
	}
	return []bratu.Option{
		bratu.WithMethod(m),
		bratu.WithSettings(c.Settings()),
		bratu.WithAnalyticJacobian(c.Jacobian == JacobianAnalytic),
	}, nil
}
