package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/xpbd"
)

const (
	DefaultCols       = 10
	DefaultRows       = 10
	DefaultIterations = 2
	DefaultStiffness  = 5000.0
	DefaultEta        = 1.0
	DefaultDamping    = 0.6
	DefaultRelaxation = 0.6
	DefaultDuration   = 10.0
)

type Config struct {
	Grid     GridConfig   `yaml:"grid"`
	Solver   SolverConfig `yaml:"solver"`
	Duration float64      `yaml:"duration"`
}

type GridConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

type SolverConfig struct {
	Iterations       int     `yaml:"iterations"`
	Stiffness        float64 `yaml:"stiffness"`
	Mode             string  `yaml:"mode"`
	WarmStart        bool    `yaml:"warm_start"`
	Eta              float64 `yaml:"eta"`
	Damping          float64 `yaml:"damping"`
	JacobiRelaxation float64 `yaml:"jacobi_relaxation"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{Cols: DefaultCols, Rows: DefaultRows},
		Solver: SolverConfig{
			Iterations:       DefaultIterations,
			Stiffness:        DefaultStiffness,
			Mode:             xpbd.GaussSeidel.String(),
			WarmStart:        true,
			Eta:              DefaultEta,
			Damping:          DefaultDamping,
			JacobiRelaxation: DefaultRelaxation,
		},
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate checks grid bounds and solver ranges.
func (c *Config) Validate() error {
	if c.Grid.Cols < 2 || c.Grid.Rows < 2 {
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", c.Grid.Cols, c.Grid.Rows)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// Params converts the solver section into the struct the core reads.
func (c *Config) Params() (xpbd.Params, error) {
	mode, err := xpbd.ParseMode(c.Solver.Mode)
	if err != nil {
		return xpbd.Params{}, err
	}
	return xpbd.Params{
		Iterations:       c.Solver.Iterations,
		Stiffness:        c.Solver.Stiffness,
		Mode:             mode,
		WarmStart:        c.Solver.WarmStart,
		Eta:              c.Solver.Eta,
		Damping:          c.Solver.Damping,
		JacobiRelaxation: c.Solver.JacobiRelaxation,
	}, nil
}
