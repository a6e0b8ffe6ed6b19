package sim

import (
	"context"

	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/xpbd"
)

// Runner drives a Stepper headlessly with synthetic frame timestamps, one
// per TargetDt, for a configured duration.
type Runner struct {
	metrics   []Metric
	observers []Observer
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run executes cfg.Duration seconds of simulation. The whole step runs
// synchronously inside each tick; cancellation is only checked between
// ticks.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	stepper := NewStepper(cfg.Cols, cfg.Rows)
	steps := int(cfg.Duration / TargetDt)

	result := &Result{
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	// Tick 0 builds topology; subsequent ticks each advance one step.
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(i) * TargetDt
		out, err := stepper.Step(t, cfg.Params)
		if err != nil {
			return result, err
		}
		if !out.Stepped {
			continue
		}

		c := stepper.Cloth()
		for _, m := range r.metrics {
			m.Observe(c, t)
		}
		for _, o := range r.observers {
			o.OnStep(c, t)
		}
		result.Samples = append(result.Samples, Sample{
			Time:       t,
			Residual:   metrics.RMSResidual(c),
			MaxStretch: metrics.MaxStretch(c),
			Kinetic:    metrics.Kinetic(c, TargetDt),
		})
		result.StepsTaken++
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	c := stepper.Cloth()
	result.FinalPositions = make([]xpbd.Vec3, len(c.Current))
	copy(result.FinalPositions, c.Current)
	result.Edges = c.Edges()

	return result, nil
}
