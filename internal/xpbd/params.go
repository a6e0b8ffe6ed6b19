package xpbd

import (
	"fmt"
	"math"
)

// Mode selects the constraint projection order.
type Mode int

const (
	// GaussSeidel applies each correction immediately; later constraints in
	// the same iteration observe it.
	GaussSeidel Mode = iota
	// Jacobi accumulates corrections per particle and applies them together
	// at the iteration boundary, under-relaxed for stability.
	Jacobi
)

func (m Mode) String() string {
	switch m {
	case GaussSeidel:
		return "gauss-seidel"
	case Jacobi:
		return "jacobi"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to its Mode value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "gauss-seidel", "gs":
		return GaussSeidel, nil
	case "jacobi":
		return Jacobi, nil
	default:
		return GaussSeidel, fmt.Errorf("unknown solve mode: %q", s)
	}
}

// Params holds the solver configuration for one step. The configuration
// surface owns writes; the solver only reads.
type Params struct {
	Iterations       int
	Stiffness        float64
	Mode             Mode
	WarmStart        bool
	Eta              float64
	Damping          float64
	JacobiRelaxation float64
}

// DefaultParams returns the tuning the simulator starts with.
func DefaultParams() Params {
	return Params{
		Iterations:       2,
		Stiffness:        5000.0,
		Mode:             GaussSeidel,
		WarmStart:        true,
		Eta:              1.0,
		Damping:          0.6,
		JacobiRelaxation: 0.6,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if p.Iterations < 1 {
		return fmt.Errorf("%w: iterations %d < 1", ErrParameterBounds, p.Iterations)
	}
	if !(p.Stiffness > 0) || math.IsInf(p.Stiffness, 0) {
		return fmt.Errorf("%w: stiffness %v must be positive and finite", ErrParameterBounds, p.Stiffness)
	}
	if err := checkUnit("eta", p.Eta); err != nil {
		return err
	}
	if err := checkUnit("damping", p.Damping); err != nil {
		return err
	}
	if err := checkUnit("jacobi_relaxation", p.JacobiRelaxation); err != nil {
		return err
	}
	return nil
}

// Set updates one named parameter, rejecting out-of-range or non-finite
// values so the previous valid value stays in effect.
func (p *Params) Set(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be finite", ErrParameterBounds, name)
	}
	switch name {
	case "iterations":
		n := int(value)
		if n < 1 {
			return fmt.Errorf("%w: iterations %d < 1", ErrParameterBounds, n)
		}
		p.Iterations = n
	case "stiffness":
		if value <= 0 {
			return fmt.Errorf("%w: stiffness %v <= 0", ErrParameterBounds, value)
		}
		p.Stiffness = value
	case "eta":
		if err := checkUnit(name, value); err != nil {
			return err
		}
		p.Eta = value
	case "damping":
		if err := checkUnit(name, value); err != nil {
			return err
		}
		p.Damping = value
	case "jacobi_relaxation":
		if err := checkUnit(name, value); err != nil {
			return err
		}
		p.JacobiRelaxation = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return nil
}

// Get returns the value of one named parameter.
func (p Params) Get(name string) (float64, bool) {
	switch name {
	case "iterations":
		return float64(p.Iterations), true
	case "stiffness":
		return p.Stiffness, true
	case "eta":
		return p.Eta, true
	case "damping":
		return p.Damping, true
	case "jacobi_relaxation":
		return p.JacobiRelaxation, true
	}
	return 0, false
}

// ParamNames lists tunable parameters in display order.
func ParamNames() []string {
	return []string{"iterations", "stiffness", "eta", "damping", "jacobi_relaxation"}
}

func checkUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v outside [0,1]", ErrParameterBounds, name, v)
	}
	return nil
}
