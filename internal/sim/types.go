package sim

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/xpbd"
)

// Sample is one per-step measurement row.
type Sample struct {
	Time       float64
	Residual   float64
	MaxStretch float64
	Kinetic    float64
}

// Result collects a headless run: per-step samples, aggregate metrics and
// the final frame for export.
type Result struct {
	Samples        []Sample
	Metrics        map[string]float64
	StepsTaken     int
	FinalPositions []xpbd.Vec3
	Edges          [][2]int
}

// Config describes a headless run.
type Config struct {
	Cols, Rows int
	Duration   float64
	Params     xpbd.Params
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(c *cloth.Cloth, t float64)
	Value() float64
	Reset()
}

// Observer receives the cloth after each completed step.
type Observer interface {
	OnStep(c *cloth.Cloth, t float64)
}
