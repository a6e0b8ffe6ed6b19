package sim

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/xpbd"
)

// TargetDt is the fixed simulation timestep in seconds.
const TargetDt = 1.0 / 60.0

// Outcome reports what one tick actually did. Ticks arriving faster than
// TargetDt are render-only and leave Stepped false.
type Outcome struct {
	Stepped bool
	Rebuilt bool
	Step    int
}

// Stepper owns the simulation context and runs at most one fixed-size
// step per tick. Reset and impulse-clear requests take effect at the
// next tick boundary; there is no partial-reset state.
type Stepper struct {
	cols, rows int
	cloth      *cloth.Cloth
	solver     *solver.Solver

	lastTimestamp      float64
	step               int
	pendingReset       bool
	pendingLambdaClear bool

	// Last-seen solver settings whose change invalidates stored impulses.
	lastMode      xpbd.Mode
	lastWarmStart bool
	seenParams    bool
}

// NewStepper creates a stepper for a cols x rows grid. The first tick
// performs the initial topology build.
func NewStepper(cols, rows int) *Stepper {
	return &Stepper{
		cols:         cols,
		rows:         rows,
		solver:       solver.New(),
		pendingReset: true,
	}
}

// RequestReset schedules a full topology rebuild for the next tick.
func (s *Stepper) RequestReset() {
	s.pendingReset = true
	s.pendingLambdaClear = true
}

// RequestImpulseClear schedules zeroing of all constraint lambdas for the
// next tick ("forget stored impulse").
func (s *Stepper) RequestImpulseClear() {
	s.pendingLambdaClear = true
}

// Resize changes the grid dimensions and schedules a rebuild.
func (s *Stepper) Resize(cols, rows int) error {
	if cols < 2 || rows < 2 {
		return xpbd.ErrGridTooSmall
	}
	s.cols, s.rows = cols, rows
	s.RequestReset()
	return nil
}

// Step processes one external tick at the given timestamp (seconds).
// Pending reset and lambda-clear requests are honored first; then, if at
// least TargetDt has elapsed since the last processed tick, exactly one
// integrate pass and p.Iterations solver iterations run. Larger deltas do
// not trigger catch-up sub-steps.
func (s *Stepper) Step(timestamp float64, p xpbd.Params) (Outcome, error) {
	var out Outcome

	if err := p.Validate(); err != nil {
		return out, err
	}

	// Stored impulses from one mode or warm-start setting are not valid
	// carry-over into another.
	if s.seenParams && (p.Mode != s.lastMode || p.WarmStart != s.lastWarmStart) {
		s.pendingLambdaClear = true
	}
	s.lastMode, s.lastWarmStart, s.seenParams = p.Mode, p.WarmStart, true

	if s.pendingReset {
		c, err := cloth.Build(s.cols, s.rows)
		if err != nil {
			return out, err
		}
		s.cloth = c
		s.step = 0
		s.lastTimestamp = timestamp
		s.pendingReset = false
		s.pendingLambdaClear = false
		out.Rebuilt = true
		return out, nil
	}

	if s.pendingLambdaClear {
		s.cloth.ClearLambdas()
		s.pendingLambdaClear = false
	}

	if timestamp-s.lastTimestamp < TargetDt {
		return out, nil
	}
	s.lastTimestamp = timestamp
	s.step++

	solver.Integrate(s.cloth, p.Damping, TargetDt)
	if err := s.solver.Project(s.cloth, p, TargetDt); err != nil {
		return out, err
	}
	for i, pos := range s.cloth.Current {
		if !pos.IsValid() {
			return out, fmt.Errorf("%w: particle %d at step %d", xpbd.ErrDiverged, i, s.step)
		}
	}

	out.Stepped = true
	out.Step = s.step
	return out, nil
}

// Cloth exposes the live simulation state. Callers must treat it as
// read-only between ticks.
func (s *Stepper) Cloth() *cloth.Cloth { return s.cloth }

// Positions returns the ordered particle positions for rendering.
func (s *Stepper) Positions() []xpbd.Vec3 {
	if s.cloth == nil {
		return nil
	}
	return s.cloth.Current
}

// Edges returns the ordered constraint index pairs for rendering.
func (s *Stepper) Edges() [][2]int {
	if s.cloth == nil {
		return nil
	}
	return s.cloth.Edges()
}

// StepCount returns the number of simulation steps since the last rebuild.
func (s *Stepper) StepCount() int { return s.step }
